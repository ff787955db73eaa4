// Package pageobjects wraps on-screen IDE elements in small typed objects.
// Every page object receives the resolved locator set it reads selectors from;
// nothing here holds global locator state.
//
// Behaviour is expressed through capability interfaces rather than a type
// hierarchy: a MenuItem is Clickable and Extractable, a TreeItem is also
// Expandable, a ContextMenu is MenuLike.
package pageobjects

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-locators/pkg/locator"
)

// ErrNoElement reports a selector that matched nothing.
var ErrNoElement = errors.New("pageobjects: no element matched")

// Driver searches the whole page.
type Driver interface {
	Find(ctx context.Context, selector locator.Selector) ([]Element, error)
}

// Element is a handle to one on-screen element.
type Element interface {
	// Find searches the element's subtree.
	Find(ctx context.Context, selector locator.Selector) ([]Element, error)
	Click(ctx context.Context) error
	Snapshot(ctx context.Context) (locator.Element, error)
}

// Clickable is implemented by page objects that react to clicks.
type Clickable interface {
	Click(ctx context.Context) error
}

// Expandable is implemented by page objects with collapsible children.
type Expandable interface {
	Expand(ctx context.Context) error
	Collapse(ctx context.Context) error
	IsExpanded(ctx context.Context) (bool, error)
}

// MenuLike is implemented by page objects listing selectable items.
type MenuLike interface {
	Items(ctx context.Context) ([]*MenuItem, error)
	Item(ctx context.Context, label string) (*MenuItem, error)
}

// Extractable is implemented by page objects whose properties are described
// by extraction entries.
type Extractable interface {
	Extract(ctx context.Context, name string) (any, error)
}

type searcher interface {
	Find(ctx context.Context, selector locator.Selector) ([]Element, error)
}

func findAll(ctx context.Context, scope searcher, selector locator.Selector) ([]Element, error) {
	elements, err := scope.Find(ctx, selector)
	if err != nil {
		return nil, fmt.Errorf("pageobjects: find %s: %w", selector, err)
	}
	return elements, nil
}

func findOne(ctx context.Context, scope searcher, selector locator.Selector) (Element, error) {
	elements, err := findAll(ctx, scope, selector)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoElement, selector)
	}
	return elements[0], nil
}
