package locators

import (
	"fmt"

	"github.com/goliatone/go-locators/layering"
	"github.com/goliatone/go-locators/pkg/locator"
)

// EntryDescriptor describes one leaf of a resolved set.
type EntryDescriptor struct {
	Path   string       `json:"path"`
	Kind   locator.Kind `json:"kind"`
	Detail string       `json:"detail,omitempty"`
}

// Describe flattens the set into descriptors sorted by path.
func (s *Set) Describe() []EntryDescriptor {
	descriptors := describeTree(s.tree, s.prefix)
	if descriptors == nil {
		return []EntryDescriptor{}
	}
	return descriptors
}

func describeTree(value any, prefix string) []EntryDescriptor {
	if node, ok := layering.AsNode(value); ok {
		if len(node) == 0 {
			if prefix == "" {
				return nil
			}
			return []EntryDescriptor{{Path: prefix, Kind: locator.KindSection}}
		}
		var out []EntryDescriptor
		for _, key := range sortedKeys(node) {
			out = append(out, describeTree(node[key], joinPath(prefix, key))...)
		}
		return out
	}
	if prefix == "" {
		return nil
	}
	return []EntryDescriptor{{Path: prefix, Kind: kindOf(value), Detail: describeValue(value)}}
}

// describeValue renders a tree value for descriptors, traces and logs.
func describeValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return "nil"
	case string:
		return locator.CSS(typed).String()
	case locator.Selector:
		return typed.String()
	case locator.Constructor:
		return "constructor=" + typed.Name
	case locator.Extraction:
		if typed.Func != nil {
			return "func=" + typed.Name
		}
		engine := typed.Engine
		if engine == "" {
			engine = "default"
		}
		return fmt.Sprintf("%s=%s", engine, typed.Expr)
	case []any:
		elementType := "any"
		if len(typed) > 0 {
			elementType = fmt.Sprintf("%T", typed[0])
		}
		return "[]" + elementType
	}
	if _, ok := layering.AsNode(value); ok {
		return "section"
	}
	return fmt.Sprintf("%v", value)
}
