package pageobjects

import (
	"context"
	"fmt"
	"strings"

	locators "github.com/goliatone/go-locators"
	"github.com/goliatone/go-locators/pkg/locator"
)

// Base carries what every page object needs: the driver, the locator section
// it reads from, and the element it wraps (nil for page-level objects).
type Base struct {
	Driver   Driver
	Locators *locators.Set
	Element  Element
	Registry *Registry
}

// Click clicks the wrapped element.
func (b Base) Click(ctx context.Context) error {
	if b.Element == nil {
		return fmt.Errorf("%w: page object has no element", ErrNoElement)
	}
	return b.Element.Click(ctx)
}

// Snapshot reads the wrapped element.
func (b Base) Snapshot(ctx context.Context) (locator.Element, error) {
	if b.Element == nil {
		return locator.Element{}, fmt.Errorf("%w: page object has no element", ErrNoElement)
	}
	return b.Element.Snapshot(ctx)
}

// Extract evaluates the extraction named name in the page object's locator
// section against the wrapped element.
func (b Base) Extract(ctx context.Context, name string) (any, error) {
	snapshot, err := b.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return b.Locators.Extract(ctx, name, snapshot)
}

// text reads the property at name: an extraction is evaluated against the
// element, a selector names a child whose text is used. Without an entry the
// element's own text is returned.
func (b Base) text(ctx context.Context, name string) (string, error) {
	target := b.Element
	if b.Locators.Has(name) {
		entry, err := b.Locators.Entry(name)
		if err != nil {
			return "", err
		}
		switch entry.(type) {
		case locator.Extraction:
			value, err := b.Extract(ctx, name)
			if err != nil {
				return "", err
			}
			return strings.TrimSpace(fmt.Sprint(value)), nil
		case locator.Selector:
			child, err := b.findOne(ctx, name)
			if err != nil {
				return "", err
			}
			target = child
		}
	}
	if target == nil {
		return "", fmt.Errorf("%w: page object has no element", ErrNoElement)
	}
	snapshot, err := target.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(snapshot.Text), nil
}

// scope returns where relative searches start: the wrapped element or the
// whole page.
func (b Base) scope() searcher {
	if b.Element != nil {
		return b.Element
	}
	return b.Driver
}

func (b Base) find(ctx context.Context, name string, args ...any) ([]Element, error) {
	selector, err := b.Locators.Selector(name, args...)
	if err != nil {
		return nil, err
	}
	return findAll(ctx, b.scope(), selector)
}

func (b Base) findOne(ctx context.Context, name string, args ...any) (Element, error) {
	selector, err := b.Locators.Selector(name, args...)
	if err != nil {
		return nil, err
	}
	return findOne(ctx, b.scope(), selector)
}

func (b Base) with(element Element) Base {
	b.Element = element
	return b
}

func (b Base) registry() *Registry {
	if b.Registry != nil {
		return b.Registry
	}
	return DefaultRegistry()
}

// construct wraps element with the page object the constructor entry at
// "constructor" names, or with fallback when the section has none.
func (b Base) construct(ctx context.Context, element Element, fallback string) (any, error) {
	ctor := locator.Constructor{Name: fallback}
	if b.Locators.Has("constructor") {
		found, err := b.Locators.Constructor("constructor")
		if err != nil {
			return nil, err
		}
		ctor = found
	}
	return b.registry().Build(ctx, ctor, b.with(element))
}

func argString(args map[string]any, key, fallback string) string {
	if value, ok := args[key].(string); ok && value != "" {
		return value
	}
	return fallback
}
