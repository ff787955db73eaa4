package layering

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestMergeFromFixture(t *testing.T) {
	fx := loadMergeFixture(t, "layering_merge.json")

	for _, tc := range fx.Cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			got := Merge(tc.Base, tc.Override)
			if !reflect.DeepEqual(tc.Expect, got) {
				t.Errorf("merged tree mismatch:\nwant: %#v\n got: %#v", tc.Expect, got)
			}
		})
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	base := map[string]any{
		"menu": map[string]any{"item": ".item", "label": ".label"},
		"tree": map[string]any{"node": ".node"},
	}
	override := map[string]any{
		"menu": map[string]any{"item": ".new"},
		"list": []any{"a"},
	}

	merged := Merge(base, override)

	if base["menu"].(map[string]any)["item"] != ".item" {
		t.Fatalf("base mutated: %#v", base)
	}
	if _, ok := base["list"]; ok {
		t.Fatalf("base gained override key: %#v", base)
	}

	merged["menu"].(map[string]any)["label"] = "changed"
	if base["menu"].(map[string]any)["label"] != ".label" {
		t.Fatalf("modified path must be a fresh copy")
	}
	merged["list"].([]any)[0] = "changed"
	if override["list"].([]any)[0] != "a" {
		t.Fatalf("override values must be copied into the result")
	}

	if reflect.ValueOf(merged["tree"]).Pointer() != reflect.ValueOf(base["tree"]).Pointer() {
		t.Fatalf("untouched subtrees should be shared with base")
	}
}

func TestMergeNilInputs(t *testing.T) {
	base := map[string]any{"a": "b"}
	if got := Merge(base, nil); !reflect.DeepEqual(got, base) {
		t.Fatalf("nil override should return base, got %#v", got)
	}
	got := Merge(nil, map[string]any{"a": map[string]any{"b": "c"}})
	want := map[string]any{"a": map[string]any{"b": "c"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("nil base should behave as empty, got %#v", got)
	}
}

func TestMergeNormalizesYAMLMaps(t *testing.T) {
	base := map[string]any{"menu": map[string]any{"item": ".item", "label": ".label"}}
	override := map[string]any{"menu": map[any]any{"item": ".new", 1: "ignored"}}

	got := Merge(base, override)
	want := map[string]any{"menu": map[string]any{"item": ".new", "label": ".label"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected merge with map[any]any override: %#v", got)
	}
}

func TestFoldAppliesInOrder(t *testing.T) {
	base := map[string]any{"a": map[string]any{"b": "base", "keep": "k"}}
	first := map[string]any{"a": map[string]any{"b": "X"}}
	second := map[string]any{"a": map[string]any{"b": "Y", "c": "Z"}}

	got := Fold(base, first, second)
	want := map[string]any{"a": map[string]any{"b": "Y", "c": "Z", "keep": "k"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("fold mismatch\nwant: %#v\n got: %#v", want, got)
	}
}

func TestCloneDetachesNestedValues(t *testing.T) {
	type entry struct {
		Value string
		Tags  []string
		Fn    func() string
	}
	fn := func() string { return "ok" }
	original := map[string]any{
		"entry": entry{Value: "v", Tags: []string{"a"}, Fn: fn},
		"node":  map[string]any{"x": []any{1, 2}},
	}

	cloned := Clone(original)
	cloned["node"].(map[string]any)["x"].([]any)[0] = 99
	if original["node"].(map[string]any)["x"].([]any)[0] != 1 {
		t.Fatalf("clone shares nested slice with original")
	}
	copied := cloned["entry"].(entry)
	copied.Tags[0] = "changed"
	if original["entry"].(entry).Tags[0] != "a" {
		t.Fatalf("clone shares struct slice with original")
	}
	if copied.Fn() != "ok" {
		t.Fatalf("function values should be carried over")
	}
}

func TestIsReservedKey(t *testing.T) {
	for _, key := range []string{"__proto__", "prototype"} {
		if !IsReservedKey(key) {
			t.Fatalf("expected %q to be reserved", key)
		}
	}
	if IsReservedKey("constructor") {
		t.Fatalf("constructor is a valid locator name")
	}
}

type mergeFixture struct {
	Description string             `json:"description"`
	Cases       []mergeFixtureCase `json:"cases"`
}

type mergeFixtureCase struct {
	Name     string         `json:"name"`
	Base     map[string]any `json:"base"`
	Override map[string]any `json:"override"`
	Expect   map[string]any `json:"expect"`
}

func loadMergeFixture(t *testing.T, name string) mergeFixture {
	t.Helper()
	path := filepath.Join("testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read merge fixture %q: %v", name, err)
	}
	var fx mergeFixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal merge fixture %q: %v", name, err)
	}
	return fx
}
