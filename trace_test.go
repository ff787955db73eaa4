package locators

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-locators/pkg/locator"
)

func TestTraceReportsLayerProvenance(t *testing.T) {
	resolver := newTestResolver(t, "1.0", map[string]any{"a": map[string]any{"b": ".base", "keep": ".keep"}}, map[string]map[string]any{
		"1.1": {"a": map[string]any{"b": ".x"}},
		"1.2": {"a": map[string]any{"c": ".z"}},
		"1.3": {"a": map[string]any{"b": ".later"}},
	})

	trace, err := resolver.Trace(context.Background(), "1.2", "a.b")
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	if len(trace.Layers) != 3 {
		t.Fatalf("expected baseline plus two diffs, got %+v", trace.Layers)
	}
	if trace.Layers[0].Layer != LayerBaseline || !trace.Layers[0].Found || trace.Layers[0].Display != "css=.base" {
		t.Fatalf("unexpected baseline layer %+v", trace.Layers[0])
	}
	if trace.Layers[1].Version != "1.1" || !trace.Layers[1].Found || trace.Layers[1].Source != "memory:1.1" {
		t.Fatalf("unexpected 1.1 layer %+v", trace.Layers[1])
	}
	if trace.Layers[2].Version != "1.2" || trace.Layers[2].Found {
		t.Fatalf("1.2 does not touch a.b: %+v", trace.Layers[2])
	}
	if !trace.Found || trace.Value != locator.CSS(".x") || trace.Display != "css=.x" {
		t.Fatalf("unexpected effective value %+v", trace)
	}
	if got := trace.Contributors(); len(got) != 2 {
		t.Fatalf("expected two contributors, got %+v", got)
	}

	payload, err := trace.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	if !strings.Contains(string(payload), `"layer":"baseline"`) {
		t.Fatalf("unexpected payload %s", payload)
	}
	decoded, err := TraceFromJSON(payload)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if decoded.Path != "a.b" || len(decoded.Layers) != 3 || decoded.Layers[1].Display != "css=.x" {
		t.Fatalf("unexpected decoded trace %+v", decoded)
	}
}

func TestTraceMissingPathAndErrors(t *testing.T) {
	resolver := newTestResolver(t, "1.0", map[string]any{"a": ".a"}, nil)

	trace, err := resolver.Trace(context.Background(), "1.0", "missing")
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	if trace.Found || len(trace.Layers) != 1 || trace.Layers[0].Found {
		t.Fatalf("expected nothing found, got %+v", trace)
	}
	if _, err := resolver.Trace(context.Background(), "bad", "a"); err == nil {
		t.Fatalf("expected parse error")
	}
}
