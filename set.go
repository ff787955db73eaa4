package locators

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/goliatone/go-locators/layering"
	"github.com/goliatone/go-locators/pkg/locator"
	"github.com/goliatone/go-locators/version"
)

// Set is a resolved, immutable locator tree. Paths are dot separated
// ("menu.item"). String leaves are CSS selectors. Every accessor hands out
// copies, so callers can never mutate a set shared by other page objects.
type Set struct {
	version   version.Version
	baseline  version.Version
	direction layering.Direction
	applied   []string
	prefix    string
	tree      map[string]any
	extractor *Extractor
}

func newSet(target, baseline version.Version, chain layering.Chain, tree map[string]any, extractor *Extractor) *Set {
	return &Set{
		version:   target,
		baseline:  baseline,
		direction: chain.Direction(),
		applied:   chain.Strings(),
		tree:      tree,
		extractor: extractor,
	}
}

// Version returns the version the set was resolved for.
func (s *Set) Version() string {
	return s.version.String()
}

// BaselineVersion returns the version of the baseline the set was folded from.
func (s *Set) BaselineVersion() string {
	return s.baseline.String()
}

// Direction reports whether the set was produced by an upgrade or downgrade.
func (s *Set) Direction() layering.Direction {
	return s.direction
}

// Applied lists the diff versions folded into the set, in application order.
func (s *Set) Applied() []string {
	return append([]string{}, s.applied...)
}

// Has reports whether path exists.
func (s *Set) Has(path string) bool {
	_, ok := s.get(path)
	return ok
}

// Lookup returns a copy of the value stored at path.
func (s *Set) Lookup(path string) (any, error) {
	value, ok := s.get(path)
	if !ok {
		return nil, notFound(s.fullPath(path))
	}
	return layering.Clone(value), nil
}

// Entry returns the entry stored at path.
func (s *Set) Entry(path string) (locator.Entry, error) {
	value, ok := s.get(path)
	if !ok {
		return nil, notFound(s.fullPath(path))
	}
	entry, ok := asEntry(value)
	if !ok {
		return nil, &KindError{Path: s.fullPath(path), Want: "entry", Got: locator.KindOf(value)}
	}
	if ctor, isCtor := entry.(locator.Constructor); isCtor {
		ctor.Args = layering.Clone(ctor.Args)
		return ctor, nil
	}
	return entry, nil
}

// Selector returns the selector at path. Args are substituted into
// parameterized selectors with Selector.Format.
func (s *Set) Selector(path string, args ...any) (locator.Selector, error) {
	entry, err := s.typed(path, locator.KindSelector)
	if err != nil {
		return locator.Selector{}, err
	}
	return entry.(locator.Selector).Format(args...), nil
}

// MustSelector is like Selector but panics on error.
func (s *Set) MustSelector(path string, args ...any) locator.Selector {
	selector, err := s.Selector(path, args...)
	if err != nil {
		panic(err)
	}
	return selector
}

// Constructor returns the constructor entry at path.
func (s *Set) Constructor(path string) (locator.Constructor, error) {
	entry, err := s.typed(path, locator.KindConstructor)
	if err != nil {
		return locator.Constructor{}, err
	}
	ctor := entry.(locator.Constructor)
	ctor.Args = layering.Clone(ctor.Args)
	return ctor, nil
}

// Extraction returns the extraction entry at path.
func (s *Set) Extraction(path string) (locator.Extraction, error) {
	entry, err := s.typed(path, locator.KindExtraction)
	if err != nil {
		return locator.Extraction{}, err
	}
	return entry.(locator.Extraction), nil
}

// Value returns a copy of the plain terminal value at path, such as a
// timeout or a flag.
func (s *Set) Value(path string) (any, error) {
	value, ok := s.get(path)
	if !ok {
		return nil, notFound(s.fullPath(path))
	}
	if kind := kindOf(value); kind != locator.KindValue {
		return nil, &KindError{Path: s.fullPath(path), Want: locator.KindValue, Got: kind}
	}
	return layering.Clone(value), nil
}

// Section returns the subtree at path as a set sharing this set's version
// metadata.
func (s *Set) Section(path string) (*Set, error) {
	value, ok := s.get(path)
	if !ok {
		return nil, notFound(s.fullPath(path))
	}
	node, ok := layering.AsNode(value)
	if !ok {
		return nil, &KindError{Path: s.fullPath(path), Want: locator.KindSection, Got: kindOf(value)}
	}
	section := *s
	section.prefix = s.fullPath(path)
	section.tree = node
	section.applied = s.Applied()
	return &section, nil
}

// Extract evaluates the extraction at path against element.
func (s *Set) Extract(ctx context.Context, path string, element locator.Element) (any, error) {
	extraction, err := s.Extraction(path)
	if err != nil {
		return nil, err
	}
	extractor := s.extractor
	if extractor == nil {
		extractor = NewExtractor()
	}
	return extractor.ExtractWith(ExtractionContext{
		Context: ctx,
		Element: element,
		Version: s.Version(),
		Path:    s.fullPath(path),
	}, extraction)
}

// Keys returns the top-level names sorted alphabetically.
func (s *Set) Keys() []string {
	return sortedKeys(s.tree)
}

// Paths returns every leaf path sorted alphabetically. Empty sections are
// reported as leaves.
func (s *Set) Paths() []string {
	descriptors := s.Describe()
	paths := make([]string, len(descriptors))
	for i, descriptor := range descriptors {
		paths[i] = descriptor.Path
	}
	return paths
}

// Raw returns a deep copy of the underlying tree.
func (s *Set) Raw() map[string]any {
	return layering.Clone(s.tree)
}

// Equal reports whether both sets hold the same tree. Extraction functions
// compare by identity and string leaves equal the matching CSS selector.
func (s *Set) Equal(other *Set) bool {
	if s == nil || other == nil {
		return s == other
	}
	return equalValues(s.tree, other.tree)
}

func (s *Set) typed(path string, want locator.Kind) (locator.Entry, error) {
	value, ok := s.get(path)
	if !ok {
		return nil, notFound(s.fullPath(path))
	}
	entry, ok := asEntry(value)
	if !ok || entry.Kind() != want {
		return nil, &KindError{Path: s.fullPath(path), Want: want, Got: kindOf(value)}
	}
	return entry, nil
}

func (s *Set) get(path string) (any, bool) {
	return lookupPath(s.tree, path)
}

func lookupPath(tree map[string]any, path string) (any, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, false
	}
	var current any = tree
	for _, segment := range strings.Split(path, ".") {
		node, ok := layering.AsNode(current)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func (s *Set) fullPath(path string) string {
	return joinPath(s.prefix, path)
}

func (s *Set) String() string {
	if s == nil {
		return "<nil>"
	}
	return fmt.Sprintf("locators.Set{version=%s baseline=%s applied=%v}", s.version, s.baseline, s.applied)
}

func asEntry(value any) (locator.Entry, bool) {
	switch typed := value.(type) {
	case string:
		return locator.CSS(typed), true
	case locator.Entry:
		return typed, true
	default:
		return nil, false
	}
}

func kindOf(value any) locator.Kind {
	if _, ok := value.(string); ok {
		return locator.KindSelector
	}
	if _, ok := layering.AsNode(value); ok {
		return locator.KindSection
	}
	return locator.KindOf(value)
}

func equalValues(a, b any) bool {
	if entry, ok := a.(string); ok {
		a = locator.CSS(entry)
	}
	if entry, ok := b.(string); ok {
		b = locator.CSS(entry)
	}
	if an, ok := layering.AsNode(a); ok {
		bn, ok := layering.AsNode(b)
		if !ok || len(an) != len(bn) {
			return false
		}
		for key, av := range an {
			bv, exists := bn[key]
			if !exists || !equalValues(av, bv) {
				return false
			}
		}
		return true
	}
	switch av := a.(type) {
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equalValues(av[i], bv[i]) {
				return false
			}
		}
		return true
	case locator.Extraction:
		bv, ok := b.(locator.Extraction)
		return ok && av.Name == bv.Name && av.Engine == bv.Engine && av.Expr == bv.Expr &&
			funcPointer(av.Func) == funcPointer(bv.Func)
	case locator.Constructor:
		bv, ok := b.(locator.Constructor)
		return ok && av.Name == bv.Name && equalValues(nonNilNode(av.Args), nonNilNode(bv.Args))
	default:
		return reflect.DeepEqual(a, b)
	}
}

func funcPointer(fn locator.ExtractFunc) uintptr {
	if fn == nil {
		return 0
	}
	return reflect.ValueOf(fn).Pointer()
}

func nonNilNode(node map[string]any) map[string]any {
	if node == nil {
		return map[string]any{}
	}
	return node
}

func sortedKeys(node map[string]any) []string {
	keys := make([]string, 0, len(node))
	for key := range node {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	if segment == "" {
		return prefix
	}
	return prefix + "." + segment
}
