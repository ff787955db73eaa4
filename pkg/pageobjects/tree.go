package pageobjects

import (
	"context"
	"fmt"
	"strings"
)

// Locator keys read from a tree section.
const (
	treeItem     = "item"
	treeLabel    = "label"
	treeExpanded = "expanded"
	treeToggle   = "toggle"
)

// TreeItem is one node of a tree view such as the file explorer. Expansion
// state comes from the "expanded" extraction when present, otherwise from
// the expandedClass constructor argument.
type TreeItem struct {
	Base
	expandedClass string
}

var (
	_ Clickable   = (*TreeItem)(nil)
	_ Expandable  = (*TreeItem)(nil)
	_ Extractable = (*TreeItem)(nil)
)

func newTreeItem(base Base, args map[string]any) *TreeItem {
	return &TreeItem{Base: base, expandedClass: argString(args, "expandedClass", "theia-mod-expanded")}
}

// Label returns the node text.
func (t *TreeItem) Label(ctx context.Context) (string, error) {
	return t.text(ctx, treeLabel)
}

// IsExpanded reports whether the node shows its children.
func (t *TreeItem) IsExpanded(ctx context.Context) (bool, error) {
	if t.Locators.Has(treeExpanded) {
		value, err := t.Extract(ctx, treeExpanded)
		if err != nil {
			return false, err
		}
		expanded, ok := value.(bool)
		if !ok {
			return false, fmt.Errorf("pageobjects: tree expanded extraction returned %T, want bool", value)
		}
		return expanded, nil
	}
	snapshot, err := t.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	return snapshot.HasClass(t.expandedClass), nil
}

// Expand opens the node; it is a no-op when already open.
func (t *TreeItem) Expand(ctx context.Context) error {
	return t.setExpanded(ctx, true)
}

// Collapse closes the node; it is a no-op when already closed.
func (t *TreeItem) Collapse(ctx context.Context) error {
	return t.setExpanded(ctx, false)
}

func (t *TreeItem) setExpanded(ctx context.Context, want bool) error {
	expanded, err := t.IsExpanded(ctx)
	if err != nil {
		return err
	}
	if expanded == want {
		return nil
	}
	if t.Locators.Has(treeToggle) {
		toggle, err := t.findOne(ctx, treeToggle)
		if err != nil {
			return err
		}
		return toggle.Click(ctx)
	}
	return t.Click(ctx)
}

// Tree is a tree view rooted at the element its section's "root" selector
// finds, or at the page when it has none.
type Tree struct {
	Base
}

// Items lists the visible nodes.
func (t *Tree) Items(ctx context.Context) ([]*TreeItem, error) {
	elements, err := t.find(ctx, treeItem)
	if err != nil {
		return nil, err
	}
	return buildAs[*TreeItem](ctx, t.Base, elements, "TreeItem")
}

// Item returns the visible node labelled label, ignoring case.
func (t *Tree) Item(ctx context.Context, label string) (*TreeItem, error) {
	items, err := t.Items(ctx)
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
	return nil, fmt.Errorf("%w: tree item %q", ErrNoElement, label)
}
