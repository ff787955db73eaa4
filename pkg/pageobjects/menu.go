package pageobjects

import (
	"context"
	"fmt"
	"strings"
)

// Locator keys read from a menu section.
const (
	menuRoot        = "root"
	menuItem        = "item"
	menuItemByLabel = "itemByLabel"
	menuLabel       = "label"
)

// ContextMenu is an open menu. Its locator section names the item selector
// and, optionally, an itemByLabel template whose %s receives the label as a
// quoted string literal.
type ContextMenu struct {
	Base
}

var _ MenuLike = (*ContextMenu)(nil)

// Items lists the menu entries in document order.
func (m *ContextMenu) Items(ctx context.Context) ([]*MenuItem, error) {
	elements, err := m.find(ctx, menuItem)
	if err != nil {
		return nil, err
	}
	return buildAs[*MenuItem](ctx, m.Base, elements, "MenuItem")
}

// Item returns the entry whose label equals label, ignoring case.
func (m *ContextMenu) Item(ctx context.Context, label string) (*MenuItem, error) {
	if m.Locators.Has(menuItemByLabel) {
		selector, err := m.Locators.Selector(menuItemByLabel)
		if err != nil {
			return nil, err
		}
		element, err := findOne(ctx, m.scope(), selector.FormatQuoted(label))
		if err != nil {
			return nil, err
		}
		items, err := buildAs[*MenuItem](ctx, m.Base, []Element{element}, "MenuItem")
		if err != nil {
			return nil, err
		}
		return items[0], nil
	}

	items, err := m.Items(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		text, err := item.Label(ctx)
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(text, label) {
			return item, nil
		}
	}
	return nil, fmt.Errorf("%w: menu item %q", ErrNoElement, label)
}

// Labels lists the entry labels in document order.
func (m *ContextMenu) Labels(ctx context.Context) ([]string, error) {
	items, err := m.Items(ctx)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(items))
	for _, item := range items {
		label, err := item.Label(ctx)
		if err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, nil
}

// Select walks labels through nested submenus and clicks the last one.
func (m *ContextMenu) Select(ctx context.Context, labels ...string) error {
	if len(labels) == 0 {
		return fmt.Errorf("pageobjects: select requires at least one label")
	}
	menu := m
	for i, label := range labels {
		item, err := menu.Item(ctx, label)
		if err != nil {
			return err
		}
		if i == len(labels)-1 {
			return item.Click(ctx)
		}
		menu, err = item.Submenu(ctx)
		if err != nil {
			return fmt.Errorf("pageobjects: open submenu %q: %w", label, err)
		}
	}
	return nil
}

// MenuItem is one menu entry. The constructor entry may set submenuClass,
// the class marking entries that open a submenu.
type MenuItem struct {
	Base
	submenuClass string
}

var (
	_ Clickable   = (*MenuItem)(nil)
	_ Extractable = (*MenuItem)(nil)
)

func newMenuItem(base Base, args map[string]any) *MenuItem {
	return &MenuItem{Base: base, submenuClass: argString(args, "submenuClass", "p-mod-submenu")}
}

// Label returns the entry text, through the "label" extraction when the
// section defines one.
func (i *MenuItem) Label(ctx context.Context) (string, error) {
	return i.text(ctx, menuLabel)
}

// HasSubmenu reports whether clicking the entry opens a nested menu.
func (i *MenuItem) HasSubmenu(ctx context.Context) (bool, error) {
	snapshot, err := i.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	if popup, ok := snapshot.Attribute("aria-haspopup"); ok && popup == "true" {
		return true, nil
	}
	return snapshot.HasClass(i.submenuClass), nil
}

// Submenu clicks the entry and returns the most recently opened menu.
func (i *MenuItem) Submenu(ctx context.Context) (*ContextMenu, error) {
	ok, err := i.HasSubmenu(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: entry has no submenu", ErrNoElement)
	}
	if err := i.Click(ctx); err != nil {
		return nil, err
	}
	page := i.Base
	page.Element = nil
	roots, err := page.find(ctx, menuRoot)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("%w: submenu did not open", ErrNoElement)
	}
	return &ContextMenu{Base: i.with(roots[len(roots)-1])}, nil
}
