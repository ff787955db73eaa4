package locators

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/goliatone/go-locators/pkg/diffs"
	"github.com/goliatone/go-locators/pkg/locator"
)

func isExpanded(_ context.Context, el locator.Element) (any, error) {
	return el.Attributes["aria-expanded"] == "true", nil
}

func loadBaselineSet(t *testing.T) *Set {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", "baseline.yaml"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	baseline, err := ParseBaseline("1.0", raw, diffs.WithFunction("isExpanded", isExpanded))
	if err != nil {
		t.Fatalf("parse baseline: %v", err)
	}
	resolver, err := NewResolver(baseline, nil)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	return resolver.Baseline()
}

func TestSetSelectorAccessors(t *testing.T) {
	set := loadBaselineSet(t)

	if got := set.MustSelector("workbench.mainArea"); got != locator.CSS("#theia-main-content-panel") {
		t.Fatalf("unexpected selector %#v", got)
	}
	if got := set.MustSelector("workbench.statusBar"); got.Strategy != locator.StrategyID || got.Value != "theia-statusBar" {
		t.Fatalf("unexpected id selector %#v", got)
	}
	if got := set.MustSelector("menu.itemByLabel", "core.open"); got.Value != `.p-Menu-item[data-command=core.open]` {
		t.Fatalf("unexpected formatted selector %q", got.Value)
	}
	if got := set.MustSelector("menu.itemByLabel").FormatQuoted(`core."open"`); got.Value != `.p-Menu-item[data-command="core.\"open\""]` {
		t.Fatalf("unexpected quoted selector %q", got.Value)
	}
	byText := set.MustSelector("menu.byText").FormatQuoted("Don't Save")
	if byText.Strategy != locator.StrategyXPath || byText.Value != `//li[contains(@class, 'p-Menu-item') and .//div[text()="Don't Save"]]` {
		t.Fatalf("unexpected xpath selector %#v", byText)
	}
}

func TestSetTypedAccessorsReportKind(t *testing.T) {
	set := loadBaselineSet(t)

	ctor, err := set.Constructor("menu.constructor")
	if err != nil {
		t.Fatalf("constructor: %v", err)
	}
	if ctor.Name != "MenuItem" || ctor.Args["submenuClass"] != "p-Menu-submenuIcon" {
		t.Fatalf("unexpected constructor %#v", ctor)
	}
	ctor.Args["submenuClass"] = "mutated"
	again, _ := set.Constructor("menu.constructor")
	if again.Args["submenuClass"] != "p-Menu-submenuIcon" {
		t.Fatalf("constructor args must be copied")
	}

	extraction, err := set.Extraction("menu.label")
	if err != nil || extraction.Expr != "attrs['title']" || extraction.Name != "title" {
		t.Fatalf("unexpected extraction %#v %v", extraction, err)
	}

	timeout, err := set.Value("notifications.timeout")
	if err != nil || timeout != 5000 {
		t.Fatalf("unexpected value %v %v", timeout, err)
	}

	var kindErr *KindError
	if _, err := set.Selector("menu.constructor"); !errors.As(err, &kindErr) || kindErr.Got != locator.KindConstructor {
		t.Fatalf("expected KindError, got %v", err)
	}
	if _, err := set.Selector("menu"); !errors.As(err, &kindErr) || kindErr.Got != locator.KindSection {
		t.Fatalf("expected section KindError, got %v", err)
	}
	if _, err := set.Value("menu.item"); !errors.As(err, &kindErr) || kindErr.Got != locator.KindSelector {
		t.Fatalf("expected selector KindError, got %v", err)
	}
	if _, err := set.Entry("notifications.timeout"); !errors.As(err, &kindErr) {
		t.Fatalf("expected KindError for scalar entry, got %v", err)
	}
	if _, err := set.Selector("menu.missing"); !errors.Is(err, ErrLocatorNotFound) {
		t.Fatalf("expected ErrLocatorNotFound, got %v", err)
	}
	if _, err := set.Lookup("menu.item.deeper"); !errors.Is(err, ErrLocatorNotFound) {
		t.Fatalf("expected ErrLocatorNotFound through a leaf, got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("MustSelector should panic on missing path")
		}
	}()
	set.MustSelector("nope")
}

func TestSetSectionAndDescribe(t *testing.T) {
	set := loadBaselineSet(t)

	menu, err := set.Section("menu")
	if err != nil {
		t.Fatalf("section: %v", err)
	}
	if got := menu.MustSelector("item"); got.Value != ".p-Menu-item" {
		t.Fatalf("unexpected section selector %#v", got)
	}
	var kindErr *KindError
	if _, err := menu.Selector("constructor"); !errors.As(err, &kindErr) || kindErr.Path != "menu.constructor" {
		t.Fatalf("section errors should carry the full path, got %v", err)
	}
	if _, err := set.Section("menu.item"); !errors.As(err, &kindErr) {
		t.Fatalf("expected KindError for leaf section, got %v", err)
	}

	if got := set.Keys(); !reflect.DeepEqual(got, []string{"menu", "notifications", "workbench"}) {
		t.Fatalf("unexpected keys %v", got)
	}

	want := []EntryDescriptor{
		{Path: "notifications.empty", Kind: locator.KindSection},
		{Path: "notifications.levels", Kind: locator.KindValue, Detail: "[]string"},
		{Path: "notifications.timeout", Kind: locator.KindValue, Detail: "5000"},
		{Path: "notifications.toast", Kind: locator.KindSelector, Detail: "css=.theia-notification-list-item"},
	}
	notifications, _ := set.Section("notifications")
	if got := notifications.Describe(); !reflect.DeepEqual(want, got) {
		t.Fatalf("unexpected descriptors\nwant: %#v\n got: %#v", want, got)
	}
	if got := len(set.Paths()); got != 12 {
		t.Fatalf("expected 12 leaf paths, got %d: %v", got, set.Paths())
	}
}

func TestSetExtractUsesAttachedExtractor(t *testing.T) {
	set := loadBaselineSet(t)
	element := locator.Element{
		Tag:        "li",
		Attributes: map[string]string{"title": "Open Folder...", "aria-expanded": "true"},
	}

	title, err := set.Extract(context.Background(), "menu.label", element)
	if err != nil || title != "Open Folder..." {
		t.Fatalf("unexpected expression extraction %v %v", title, err)
	}
	expanded, err := set.Extract(context.Background(), "menu.expanded", element)
	if err != nil || expanded != true {
		t.Fatalf("unexpected function extraction %v %v", expanded, err)
	}
	if _, err := set.Extract(context.Background(), "menu.item", element); err == nil {
		t.Fatalf("expected KindError extracting from a selector")
	}
}

func TestSetEqualComparesFunctionsByIdentity(t *testing.T) {
	other := func(context.Context, locator.Element) (any, error) { return nil, nil }
	build := func(fn locator.ExtractFunc) *Set {
		resolver, err := NewResolver(Baseline{Version: "1.0", Locators: map[string]any{
			"a":   ".a",
			"fn":  locator.Fn("f", fn),
			"ctr": locator.Constructor{Name: "Tab"},
		}}, nil)
		if err != nil {
			t.Fatalf("new resolver: %v", err)
		}
		return resolver.Baseline()
	}

	if !build(isExpanded).Equal(build(isExpanded)) {
		t.Fatalf("sets with the same function should be equal")
	}
	if build(isExpanded).Equal(build(other)) {
		t.Fatalf("sets with different functions should differ")
	}
	plain := &Set{tree: map[string]any{"a": ".a"}}
	decoded := &Set{tree: map[string]any{"a": locator.CSS(".a")}}
	if !plain.Equal(decoded) {
		t.Fatalf("string leaves should equal CSS selectors")
	}
	var nilSet *Set
	if plain.Equal(nilSet) || !nilSet.Equal(nil) {
		t.Fatalf("unexpected nil comparison")
	}
}
