package pageobjects

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-locators/pkg/locator"
)

// Factory wraps a found element, carried by base, into a page object. Args
// come from the constructor entry that named the factory.
type Factory func(ctx context.Context, base Base, args map[string]any) (any, error)

// Registry maps constructor entry names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns a registry holding the built-in page objects:
// ContextMenu, MenuItem, TreeItem, Notification and EditorTab.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		defaultRegistry.mustRegister("ContextMenu", func(_ context.Context, base Base, _ map[string]any) (any, error) {
			return &ContextMenu{Base: base}, nil
		})
		defaultRegistry.mustRegister("MenuItem", func(_ context.Context, base Base, args map[string]any) (any, error) {
			return newMenuItem(base, args), nil
		})
		defaultRegistry.mustRegister("TreeItem", func(_ context.Context, base Base, args map[string]any) (any, error) {
			return newTreeItem(base, args), nil
		})
		defaultRegistry.mustRegister("Notification", func(_ context.Context, base Base, _ map[string]any) (any, error) {
			return &Notification{Base: base}, nil
		})
		defaultRegistry.mustRegister("EditorTab", func(_ context.Context, base Base, args map[string]any) (any, error) {
			return newEditorTab(base, args), nil
		})
	})
	return defaultRegistry
}

// Register binds name to factory, replacing any earlier binding.
func (r *Registry) Register(name string, factory Factory) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("pageobjects: constructor name required")
	}
	if factory == nil {
		return fmt.Errorf("pageobjects: constructor %q: factory required", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
	return nil
}

func (r *Registry) mustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Clone copies the registry so callers can extend it without touching the
// original.
func (r *Registry) Clone() *Registry {
	clone := NewRegistry()
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, factory := range r.factories {
		clone.factories[name] = factory
	}
	return clone
}

// Names lists the registered constructors.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build wraps base with the page object ctor names.
func (r *Registry) Build(ctx context.Context, ctor locator.Constructor, base Base) (any, error) {
	r.mu.RLock()
	factory, ok := r.factories[ctor.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("pageobjects: unknown constructor %q", ctor.Name)
	}
	if base.Registry == nil {
		base.Registry = r
	}
	return factory(ctx, base, ctor.Args)
}

// buildAs wraps every element and asserts the resulting type.
func buildAs[T any](ctx context.Context, base Base, elements []Element, fallback string) ([]T, error) {
	out := make([]T, 0, len(elements))
	for _, element := range elements {
		built, err := base.construct(ctx, element, fallback)
		if err != nil {
			return nil, err
		}
		typed, ok := built.(T)
		if !ok {
			var zero T
			return nil, fmt.Errorf("pageobjects: constructor built %T, want %T", built, zero)
		}
		out = append(out, typed)
	}
	return out, nil
}
