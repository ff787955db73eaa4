// Package roddriver drives page objects through go-rod.
package roddriver

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/goliatone/go-locators/pkg/driver"
	"github.com/goliatone/go-locators/pkg/locator"
	"github.com/goliatone/go-locators/pkg/pageobjects"
)

// Driver runs queries against a rod page.
type Driver struct {
	page *rod.Page
}

var _ pageobjects.Driver = (*Driver)(nil)

// New wraps page.
func New(page *rod.Page) *Driver {
	return &Driver{page: page}
}

// Find returns every element matching selector; it does not wait for
// matches to appear.
func (d *Driver) Find(ctx context.Context, selector locator.Selector) ([]pageobjects.Element, error) {
	query, err := driver.Normalize(selector, false)
	if err != nil {
		return nil, err
	}
	page := d.page.Context(ctx)
	var found rod.Elements
	if query.CSS != "" {
		found, err = page.Elements(query.CSS)
	} else {
		found, err = page.ElementsX(query.XPath)
	}
	if err != nil {
		return nil, fmt.Errorf("roddriver: query %s: %w", selector, err)
	}
	return wrap(found), nil
}

func wrap(found rod.Elements) []pageobjects.Element {
	out := make([]pageobjects.Element, 0, len(found))
	for _, el := range found {
		out = append(out, &Element{el: el})
	}
	return out
}

// Element is a DOM element found by a Driver.
type Element struct {
	el *rod.Element
}

var _ pageobjects.Element = (*Element)(nil)

// Rod exposes the underlying rod element.
func (e *Element) Rod() *rod.Element {
	return e.el
}

// Find searches the element's subtree.
func (e *Element) Find(ctx context.Context, selector locator.Selector) ([]pageobjects.Element, error) {
	query, err := driver.Normalize(selector, true)
	if err != nil {
		return nil, err
	}
	el := e.el.Context(ctx)
	var found rod.Elements
	if query.CSS != "" {
		found, err = el.Elements(query.CSS)
	} else {
		found, err = el.ElementsX(query.XPath)
	}
	if err != nil {
		return nil, fmt.Errorf("roddriver: query %s: %w", selector, err)
	}
	return wrap(found), nil
}

// Click scrolls the element into view and left-clicks it once.
func (e *Element) Click(ctx context.Context) error {
	if err := e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("roddriver: click: %w", err)
	}
	return nil
}

// Snapshot reads the element's tag, rendered text, attributes and classes.
func (e *Element) Snapshot(ctx context.Context) (locator.Element, error) {
	el := e.el.Context(ctx)
	node, err := el.Describe(0, false)
	if err != nil {
		return locator.Element{}, fmt.Errorf("roddriver: describe: %w", err)
	}
	text, err := el.Text()
	if err != nil {
		return locator.Element{}, fmt.Errorf("roddriver: text: %w", err)
	}
	attrs := make(map[string]string, len(node.Attributes)/2)
	for i := 0; i+1 < len(node.Attributes); i += 2 {
		attrs[node.Attributes[i]] = node.Attributes[i+1]
	}
	return locator.Element{
		Tag:        strings.ToLower(node.LocalName),
		Text:       text,
		Attributes: attrs,
		Classes:    driver.Classes(attrs),
	}, nil
}
