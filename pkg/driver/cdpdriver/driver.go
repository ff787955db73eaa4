// Package cdpdriver drives page objects through the Chrome DevTools Protocol
// with chromedp.
package cdpdriver

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/goliatone/go-locators/pkg/driver"
	"github.com/goliatone/go-locators/pkg/locator"
	"github.com/goliatone/go-locators/pkg/pageobjects"
)

// Driver runs queries in the tab bound to a chromedp context.
type Driver struct {
	tab context.Context
}

var _ pageobjects.Driver = (*Driver)(nil)

// New wraps a context created with chromedp.NewContext.
func New(tab context.Context) *Driver {
	return &Driver{tab: tab}
}

// Find returns every element matching selector; it does not wait for
// matches to appear.
func (d *Driver) Find(ctx context.Context, selector locator.Selector) ([]pageobjects.Element, error) {
	return d.find(ctx, selector, nil)
}

func (d *Driver) find(ctx context.Context, selector locator.Selector, from *cdp.Node) ([]pageobjects.Element, error) {
	query, err := driver.Normalize(selector, from != nil)
	if err != nil {
		return nil, err
	}

	var nodes []*cdp.Node
	var action chromedp.QueryAction
	if query.CSS != "" {
		opts := []chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}
		if from != nil {
			opts = append(opts, chromedp.FromNode(from))
		}
		action = chromedp.Nodes(query.CSS, &nodes, opts...)
	} else {
		// BySearch ignores FromNode, so scoped XPath is anchored explicitly.
		xpath := query.XPath
		if from != nil && strings.HasPrefix(xpath, ".") {
			xpath = from.FullXPath() + strings.TrimPrefix(xpath, ".")
		}
		action = chromedp.Nodes(xpath, &nodes, chromedp.BySearch, chromedp.AtLeast(0))
	}

	if err := d.run(ctx, action); err != nil {
		return nil, fmt.Errorf("cdpdriver: query %s: %w", selector, err)
	}
	out := make([]pageobjects.Element, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, &Element{driver: d, node: node})
	}
	return out, nil
}

// run executes actions in the tab, cancelled when either the tab or ctx
// ends.
func (d *Driver) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithCancel(d.tab)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// Element is a DOM node found by a Driver.
type Element struct {
	driver *Driver
	node   *cdp.Node
}

var _ pageobjects.Element = (*Element)(nil)

// Node exposes the underlying DOM node.
func (e *Element) Node() *cdp.Node {
	return e.node
}

// Find searches the element's subtree.
func (e *Element) Find(ctx context.Context, selector locator.Selector) ([]pageobjects.Element, error) {
	return e.driver.find(ctx, selector, e.node)
}

// Click dispatches a left click at the element's center.
func (e *Element) Click(ctx context.Context) error {
	if err := e.driver.run(ctx, chromedp.MouseClickNode(e.node)); err != nil {
		return fmt.Errorf("cdpdriver: click %s: %w", e.node.FullXPath(), err)
	}
	return nil
}

// Snapshot reads the element's tag, rendered text, attributes and classes.
func (e *Element) Snapshot(ctx context.Context) (locator.Element, error) {
	ids := []cdp.NodeID{e.node.NodeID}
	var text string
	var attrs map[string]string
	err := e.driver.run(ctx,
		chromedp.Text(ids, &text, chromedp.ByNodeID),
		chromedp.Attributes(ids, &attrs, chromedp.ByNodeID),
	)
	if err != nil {
		return locator.Element{}, fmt.Errorf("cdpdriver: snapshot %s: %w", e.node.FullXPath(), err)
	}
	if attrs == nil {
		attrs = map[string]string{}
	}
	return locator.Element{
		Tag:        strings.ToLower(e.node.LocalName),
		Text:       text,
		Attributes: attrs,
		Classes:    driver.Classes(attrs),
	}, nil
}
