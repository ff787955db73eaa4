package pageobjects

import (
	"context"
	"fmt"

	locators "github.com/goliatone/go-locators"
)

// Top-level locator sections a Workbench reads.
const (
	SectionMenu          = "menu"
	SectionExplorer      = "explorer"
	SectionNotifications = "notifications"
	SectionEditor        = "editor"
)

// Workbench is the entry point into the IDE window. It hands each page object
// the locator section it reads from.
type Workbench struct {
	driver   Driver
	locators *locators.Set
	registry *Registry
}

// WorkbenchOption customizes a Workbench.
type WorkbenchOption func(*Workbench)

// WithRegistry replaces the constructor registry.
func WithRegistry(registry *Registry) WorkbenchOption {
	return func(w *Workbench) {
		if registry != nil {
			w.registry = registry
		}
	}
}

// NewWorkbench wraps driver with the resolved locator set.
func NewWorkbench(driver Driver, set *locators.Set, opts ...WorkbenchOption) (*Workbench, error) {
	if driver == nil {
		return nil, fmt.Errorf("pageobjects: driver required")
	}
	if set == nil {
		return nil, fmt.Errorf("pageobjects: locator set required")
	}
	w := &Workbench{driver: driver, locators: set, registry: DefaultRegistry()}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Locators returns the set the workbench reads from.
func (w *Workbench) Locators() *locators.Set {
	return w.locators
}

// ContextMenu returns the most recently opened menu.
func (w *Workbench) ContextMenu(ctx context.Context) (*ContextMenu, error) {
	base, err := w.base(SectionMenu)
	if err != nil {
		return nil, err
	}
	roots, err := base.find(ctx, menuRoot)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("%w: no open menu", ErrNoElement)
	}
	return &ContextMenu{Base: base.with(roots[len(roots)-1])}, nil
}

// Explorer returns the file explorer tree.
func (w *Workbench) Explorer(ctx context.Context) (*Tree, error) {
	return w.Tree(ctx, SectionExplorer)
}

// Tree returns the tree view described by section.
func (w *Workbench) Tree(ctx context.Context, section string) (*Tree, error) {
	base, err := w.rooted(ctx, section)
	if err != nil {
		return nil, err
	}
	return &Tree{Base: base}, nil
}

// Notifications lists the visible notifications.
func (w *Workbench) Notifications(ctx context.Context) ([]*Notification, error) {
	base, err := w.rooted(ctx, SectionNotifications)
	if err != nil {
		return nil, err
	}
	elements, err := base.find(ctx, notificationItem)
	if err != nil {
		return nil, err
	}
	return buildAs[*Notification](ctx, base, elements, "Notification")
}

// Editor returns the editor area.
func (w *Workbench) Editor(ctx context.Context) (*EditorArea, error) {
	base, err := w.rooted(ctx, SectionEditor)
	if err != nil {
		return nil, err
	}
	return &EditorArea{Base: base}, nil
}

func (w *Workbench) base(section string) (Base, error) {
	set, err := w.locators.Section(section)
	if err != nil {
		return Base{}, err
	}
	return Base{Driver: w.driver, Locators: set, Registry: w.registry}, nil
}

// rooted scopes the section to its "root" element when it names one.
func (w *Workbench) rooted(ctx context.Context, section string) (Base, error) {
	base, err := w.base(section)
	if err != nil {
		return Base{}, err
	}
	if !base.Locators.Has("root") {
		return base, nil
	}
	root, err := base.findOne(ctx, "root")
	if err != nil {
		return Base{}, err
	}
	return base.with(root), nil
}
