package pageobjects

import (
	"context"
	"fmt"
	"strings"
)

// Locator keys read from an editor section.
const (
	editorTab      = "tab"
	editorTabLabel = "label"
	editorTabClose = "close"
)

// EditorTab is one tab of the editor area. The constructor entry may set
// activeClass and dirtyClass.
type EditorTab struct {
	Base
	activeClass string
	dirtyClass  string
}

var (
	_ Clickable   = (*EditorTab)(nil)
	_ Extractable = (*EditorTab)(nil)
)

func newEditorTab(base Base, args map[string]any) *EditorTab {
	return &EditorTab{
		Base:        base,
		activeClass: argString(args, "activeClass", "p-mod-current"),
		dirtyClass:  argString(args, "dirtyClass", "theia-mod-dirty"),
	}
}

// Title returns the tab label.
func (e *EditorTab) Title(ctx context.Context) (string, error) {
	return e.text(ctx, editorTabLabel)
}

// IsActive reports whether the tab is the current one.
func (e *EditorTab) IsActive(ctx context.Context) (bool, error) {
	return e.hasClass(ctx, e.activeClass)
}

// IsDirty reports whether the tab's document has unsaved changes.
func (e *EditorTab) IsDirty(ctx context.Context) (bool, error) {
	return e.hasClass(ctx, e.dirtyClass)
}

// Close clicks the tab's close button.
func (e *EditorTab) Close(ctx context.Context) error {
	button, err := e.findOne(ctx, editorTabClose)
	if err != nil {
		return err
	}
	return button.Click(ctx)
}

func (e *EditorTab) hasClass(ctx context.Context, class string) (bool, error) {
	snapshot, err := e.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	return snapshot.HasClass(class), nil
}

// EditorArea lists the open editor tabs.
type EditorArea struct {
	Base
}

// Tabs lists the open tabs in order.
func (a *EditorArea) Tabs(ctx context.Context) ([]*EditorTab, error) {
	elements, err := a.find(ctx, editorTab)
	if err != nil {
		return nil, err
	}
	return buildAs[*EditorTab](ctx, a.Base, elements, "EditorTab")
}

// Tab returns the tab titled title, ignoring case.
func (a *EditorArea) Tab(ctx context.Context, title string) (*EditorTab, error) {
	tabs, err := a.Tabs(ctx)
	if err != nil {
		return nil, err
	}
	for _, tab := range tabs {
		text, err := tab.Title(ctx)
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(text, title) {
			return tab, nil
		}
	}
	return nil, fmt.Errorf("%w: editor tab %q", ErrNoElement, title)
}

// Active returns the current tab.
func (a *EditorArea) Active(ctx context.Context) (*EditorTab, error) {
	tabs, err := a.Tabs(ctx)
	if err != nil {
		return nil, err
	}
	for _, tab := range tabs {
		active, err := tab.IsActive(ctx)
		if err != nil {
			return nil, err
		}
		if active {
			return tab, nil
		}
	}
	return nil, fmt.Errorf("%w: no active editor tab", ErrNoElement)
}
