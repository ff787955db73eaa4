// Package locator defines the terminal values a locator tree may hold. A tree
// is a nested map[string]any whose leaves are one of the Entry variants below
// or a plain scalar (timeouts, counts, flags).
//
// Consumers type-switch on the concrete variant:
//
//	switch e := entry.(type) {
//	case locator.Selector:
//	case locator.Constructor:
//	case locator.Extraction:
//	}
package locator

import (
	"context"
	"fmt"
	"strings"
)

// Kind names an Entry variant.
type Kind string

const (
	KindSelector    Kind = "selector"
	KindConstructor Kind = "constructor"
	KindExtraction  Kind = "extraction"
	KindValue       Kind = "value"
	KindSection     Kind = "section"
)

// Entry is implemented by Selector, Constructor and Extraction.
type Entry interface {
	Kind() Kind
	isEntry()
}

// Strategy tells a driver how to interpret a selector value.
type Strategy string

const (
	StrategyCSS   Strategy = "css"
	StrategyXPath Strategy = "xpath"
	StrategyID    Strategy = "id"
	StrategyText  Strategy = "text"
)

// ParseStrategy normalizes a strategy name. Empty input defaults to CSS.
func ParseStrategy(value string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "css":
		return StrategyCSS, nil
	case "xpath":
		return StrategyXPath, nil
	case "id":
		return StrategyID, nil
	case "text", "linktext":
		return StrategyText, nil
	default:
		return "", fmt.Errorf("locator: unknown selector strategy %q", value)
	}
}

// Selector finds an element on screen.
type Selector struct {
	Value    string
	Strategy Strategy
}

// CSS builds a CSS selector.
func CSS(value string) Selector {
	return Selector{Value: value, Strategy: StrategyCSS}
}

// XPath builds an XPath selector.
func XPath(value string) Selector {
	return Selector{Value: value, Strategy: StrategyXPath}
}

func (Selector) Kind() Kind { return KindSelector }
func (Selector) isEntry()   {}

func (s Selector) String() string {
	strategy := s.Strategy
	if strategy == "" {
		strategy = StrategyCSS
	}
	return fmt.Sprintf("%s=%s", strategy, s.Value)
}

// Format substitutes args into the selector value with fmt.Sprintf, for
// parameterized selectors such as `.item[title="%s"]`.
func (s Selector) Format(args ...any) Selector {
	if len(args) == 0 {
		return s
	}
	return Selector{Value: fmt.Sprintf(s.Value, args...), Strategy: s.Strategy}
}

// Constructor names the page-object variant used to wrap a found element.
type Constructor struct {
	Name string
	Args map[string]any
}

func (Constructor) Kind() Kind { return KindConstructor }
func (Constructor) isEntry()   {}

// Element is a read-only snapshot of an on-screen element handed to
// extraction functions.
type Element struct {
	Tag        string
	Text       string
	Attributes map[string]string
	Classes    []string
}

// Attribute returns the named attribute.
func (e Element) Attribute(name string) (string, bool) {
	value, ok := e.Attributes[name]
	return value, ok
}

// HasClass reports whether the element carries class.
func (e Element) HasClass(class string) bool {
	for _, c := range e.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// Map exposes the snapshot as the binding expression engines evaluate
// against.
func (e Element) Map() map[string]any {
	attrs := make(map[string]any, len(e.Attributes))
	for k, v := range e.Attributes {
		attrs[k] = v
	}
	classes := make([]any, len(e.Classes))
	for i, c := range e.Classes {
		classes[i] = c
	}
	return map[string]any{
		"tag":     e.Tag,
		"text":    e.Text,
		"attrs":   attrs,
		"classes": classes,
	}
}

// ExtractFunc derives a value from an element snapshot.
type ExtractFunc func(ctx context.Context, element Element) (any, error)

// Extraction derives properties from a found element, either through a Go
// function or an expression evaluated by a named engine ("expr", "cel", "js").
// Func takes precedence when both are set.
type Extraction struct {
	Name   string
	Engine string
	Expr   string
	Func   ExtractFunc
}

// Fn builds a function-backed extraction.
func Fn(name string, fn ExtractFunc) Extraction {
	return Extraction{Name: name, Func: fn}
}

// Expr builds an expression-backed extraction for engine.
func Expr(engine, expr string) Extraction {
	return Extraction{Engine: engine, Expr: expr}
}

func (Extraction) Kind() Kind { return KindExtraction }
func (Extraction) isEntry()   {}

// KindOf classifies a tree value.
func KindOf(value any) Kind {
	switch value.(type) {
	case Selector:
		return KindSelector
	case Constructor:
		return KindConstructor
	case Extraction:
		return KindExtraction
	case map[string]any:
		return KindSection
	default:
		return KindValue
	}
}
