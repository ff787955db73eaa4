package locators

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-locators/pkg/locator"
)

var evaluatorFactories = []struct {
	name string
	new  func(cache ProgramCache, registry *FunctionRegistry) Evaluator
}{
	{
		name: EngineExpr,
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			return NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(registry))
		},
	},
	{
		name: EngineCEL,
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			return NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(registry))
		},
	},
	{
		name: EngineJS,
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			return NewJSEvaluator(JSWithProgramCache(cache), JSWithFunctionRegistry(registry))
		},
	},
}

type extractionFixture struct {
	Description string `json:"description"`
	Element     struct {
		Tag        string            `json:"tag"`
		Text       string            `json:"text"`
		Attributes map[string]string `json:"attributes"`
		Classes    []string          `json:"classes"`
	} `json:"element"`
	Cases []struct {
		Name  string            `json:"name"`
		Exprs map[string]string `json:"exprs"`
		Want  any               `json:"want"`
	} `json:"cases"`
}

func TestEvaluatorsFromFixture(t *testing.T) {
	fx := loadFixture[extractionFixture](t, "extraction_cases.json")
	element := locator.Element{
		Tag:        fx.Element.Tag,
		Text:       fx.Element.Text,
		Attributes: fx.Element.Attributes,
		Classes:    fx.Element.Classes,
	}

	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, nil)
			if evaluator == nil {
				t.Skipf("%s evaluator not available in this build", factory.name)
			}
			for _, tc := range fx.Cases {
				tc := tc
				t.Run(tc.Name, func(t *testing.T) {
					expr, ok := tc.Exprs[factory.name]
					if !ok {
						t.Skipf("no %s expression", factory.name)
					}
					got, err := evaluator.Evaluate(ExtractionContext{Element: element, Version: "2.1"}, expr)
					if err != nil {
						t.Fatalf("evaluate %q: %v", expr, err)
					}
					if got != tc.Want {
						t.Fatalf("expected %#v, got %#v", tc.Want, got)
					}
				})
			}
		})
	}
}

func TestEvaluatorsCallRegistryFunctions(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("normalizeLabel", func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, errors.New("normalizeLabel expects one argument")
		}
		label, _ := args[0].(string)
		return strings.TrimSuffix(strings.ToLower(label), "..."), nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	element := locator.Element{Attributes: map[string]string{"title": "Open Folder..."}}

	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, registry)
			if evaluator == nil {
				t.Skipf("%s evaluator not available in this build", factory.name)
			}
			for _, expr := range []string{"normalizeLabel(attrs['title'])", "call('normalizeLabel', attrs['title'])"} {
				got, err := evaluator.Evaluate(ExtractionContext{Element: element}, expr)
				if err != nil {
					t.Fatalf("evaluate %q: %v", expr, err)
				}
				if got != "open folder" {
					t.Fatalf("%q: expected %q, got %#v", expr, "open folder", got)
				}
			}
		})
	}
}

func TestEvaluatorsReportCompileErrors(t *testing.T) {
	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, nil)
			if evaluator == nil {
				t.Skipf("%s evaluator not available in this build", factory.name)
			}
			if _, err := evaluator.Compile(""); err == nil {
				t.Fatalf("expected error for empty expression")
			}
			_, err := evaluator.Compile("attrs[")
			var evalErr *EvaluationError
			if !errors.As(err, &evalErr) || evalErr.Engine != factory.name || evalErr.Expr != "attrs[" {
				t.Fatalf("expected EvaluationError, got %v", err)
			}
		})
	}
}

type countingCache struct {
	mu      sync.Mutex
	entries map[string]any
	sets    int
}

func (c *countingCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	return value, ok
}

func (c *countingCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = map[string]any{}
	}
	c.entries[key] = value
	c.sets++
}

func TestEvaluatorsShareProgramCachePerEngine(t *testing.T) {
	cache := &countingCache{}
	engines := 0
	for _, factory := range evaluatorFactories {
		evaluator := factory.new(cache, nil)
		if evaluator == nil {
			continue
		}
		engines++
		for i := 0; i < 3; i++ {
			if _, err := evaluator.Evaluate(ExtractionContext{Element: locator.Element{Text: "x"}}, "text"); err != nil {
				t.Fatalf("%s evaluate: %v", factory.name, err)
			}
		}
	}
	if cache.sets != engines {
		t.Fatalf("expected one compiled program per engine (%d), got %d", engines, cache.sets)
	}
}

func TestExtractorDispatch(t *testing.T) {
	var events []ExtractionLogEvent
	boom := errors.New("boom")
	extractor := NewExtractor(
		WithDefaultEngine("CEL"),
		WithProgramCache(NewProgramCache()),
		WithCustomFunction("twice", func(args ...any) (any, error) {
			return args[0].(string) + args[0].(string), nil
		}),
		WithLogger(ExtractionLoggerFunc(func(event ExtractionLogEvent) {
			events = append(events, event)
		})),
	)
	element := locator.Element{Text: "ab"}
	ctx := context.Background()

	if extractor.DefaultEngine() != EngineCEL {
		t.Fatalf("expected cel default, got %s", extractor.DefaultEngine())
	}
	got, err := extractor.Extract(ctx, locator.Extraction{Expr: "twice(text)"}, element)
	if err != nil || got != "abab" {
		t.Fatalf("default engine extraction: %v %v", got, err)
	}
	got, err = extractor.Extract(ctx, locator.Expr("expr", "text + '!'"), element)
	if err != nil || got != "ab!" {
		t.Fatalf("named engine extraction: %v %v", got, err)
	}
	got, err = extractor.Extract(ctx, locator.Extraction{
		Expr: "ignored",
		Func: func(_ context.Context, el locator.Element) (any, error) { return len(el.Text), nil },
	}, element)
	if err != nil || got != 2 {
		t.Fatalf("function must take precedence: %v %v", got, err)
	}

	_, err = extractor.Extract(ctx, locator.Expr("lua", "text"), element)
	if !errors.Is(err, ErrNoEvaluator) {
		t.Fatalf("expected ErrNoEvaluator, got %v", err)
	}
	_, err = extractor.Extract(ctx, locator.Fn("fails", func(context.Context, locator.Element) (any, error) { return nil, boom }), element)
	var evalErr *EvaluationError
	if !errors.Is(err, boom) || !errors.As(err, &evalErr) || evalErr.Engine != "func" {
		t.Fatalf("expected wrapped function error, got %v", err)
	}

	if len(events) != 5 {
		t.Fatalf("expected 5 log events, got %d", len(events))
	}
	if events[0].Engine != EngineCEL || events[1].Engine != EngineExpr || events[2].Engine != "func" || events[4].Err == nil {
		t.Fatalf("unexpected log events %+v", events)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := extractor.Extract(cancelled, locator.Expr("expr", "text"), element); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCELRegistryFunctionNamedLikeBuiltin(t *testing.T) {
	extractor := NewExtractor(
		WithCustomFunction("size", func(args ...any) (any, error) {
			return "custom", nil
		}),
		WithCustomFunction("shout", func(args ...any) (any, error) {
			return args[0].(string) + "!", nil
		}),
	)
	element := locator.Element{Text: "abc"}
	ctx := context.Background()

	cases := []struct {
		expr string
		want any
	}{
		{expr: "text", want: "abc"},
		{expr: "size(text)", want: int64(3)},
		{expr: `call("size", text)`, want: "custom"},
		{expr: "shout(text)", want: "abc!"},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := extractor.Extract(ctx, locator.Expr(EngineCEL, tc.expr), element)
			if err != nil {
				t.Fatalf("extract: %v", err)
			}
			if got != tc.want {
				t.Fatalf("want %#v got %#v", tc.want, got)
			}
		})
	}
}

func TestExtractorCustomEvaluator(t *testing.T) {
	custom := &capturingEvaluator{result: "custom"}
	extractor := NewExtractor(WithEvaluator("Upper", custom))

	got, err := extractor.Extract(context.Background(), locator.Expr("upper", "whatever"), locator.Element{Tag: "div"})
	if err != nil || got != "custom" {
		t.Fatalf("unexpected result %v %v", got, err)
	}
	if len(custom.contexts) != 1 || custom.contexts[0].Now == nil || custom.contexts[0].Element.Tag != "div" {
		t.Fatalf("expected defaulted context, got %+v", custom.contexts)
	}
	if names := extractor.Engines(); names[len(names)-1] != "upper" {
		t.Fatalf("custom engine should be listed, got %v", names)
	}
}

func TestFunctionRegistry(t *testing.T) {
	registry := NewFunctionRegistry()
	noop := func(...any) (any, error) { return nil, nil }
	if err := registry.Register("IsVisible", noop); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("isvisible", noop); err == nil {
		t.Fatalf("expected duplicate error")
	}
	for _, name := range []string{"", "1st", "has-dash", "attrs", "call"} {
		if err := registry.Register(name, noop); err == nil {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
	if _, err := registry.Call("ISVISIBLE"); err != nil {
		t.Fatalf("lookup should ignore case: %v", err)
	}
	if names := registry.Names(); len(names) != 1 || names[0] != "IsVisible" {
		t.Fatalf("names should keep registered case, got %v", names)
	}
	clone := registry.Clone()
	_ = clone.Register("other", noop)
	if registry.Len() != 1 || clone.Len() != 2 {
		t.Fatalf("clone must be independent")
	}
}

type capturingEvaluator struct {
	mu       sync.Mutex
	result   any
	contexts []ExtractionContext
}

func (c *capturingEvaluator) Evaluate(ctx ExtractionContext, _ string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contexts = append(c.contexts, ctx)
	return c.result, nil
}

func (c *capturingEvaluator) Compile(expr string) (CompiledRule, error) {
	return compiledFunc(func(ctx ExtractionContext) (any, error) {
		return c.Evaluate(ctx, expr)
	}), nil
}

type compiledFunc func(ExtractionContext) (any, error)

func (f compiledFunc) Evaluate(ctx ExtractionContext) (any, error) {
	return f(ctx)
}

func TestJSEvaluatorOptionLimits(t *testing.T) {
	cfg := applyJSEvaluatorOptions(nil)
	if cfg.timeout != DefaultJSTimeout || cfg.maxCallStack != DefaultJSMaxCallStack {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	cfg = applyJSEvaluatorOptions([]JSEvaluatorOption{
		JSWithTimeout(0),
		JSWithMaxCallStack(32),
		JSWithFunctionRegistry(nil),
		nil,
	})
	if cfg.timeout != 0 || cfg.maxCallStack != 32 || cfg.registry != nil {
		t.Fatalf("options not applied: %+v", cfg)
	}
}

func TestJSEvaluatorStopsRunawayScripts(t *testing.T) {
	evaluator := NewJSEvaluator(JSWithTimeout(20*time.Millisecond), JSWithMaxCallStack(64))
	if evaluator == nil {
		t.Skip("js evaluator not available in this build")
	}
	element := locator.Element{Text: "Save"}

	t.Run("timeout", func(t *testing.T) {
		started := time.Now()
		_, err := evaluator.Evaluate(ExtractionContext{Element: element}, "(() => { while (true) {} })()")
		var evalErr *EvaluationError
		if !errors.As(err, &evalErr) {
			t.Fatalf("expected EvaluationError, got %v", err)
		}
		if elapsed := time.Since(started); elapsed > 2*time.Second {
			t.Fatalf("script ran for %s", elapsed)
		}
	})

	t.Run("recursion", func(t *testing.T) {
		_, err := evaluator.Evaluate(ExtractionContext{Element: element}, "(function f(n) { return f(n + 1); })(0)")
		if err == nil {
			t.Fatalf("expected call stack error")
		}
	})

	t.Run("within limits", func(t *testing.T) {
		got, err := evaluator.Evaluate(ExtractionContext{Element: element}, "text.toLowerCase()")
		if err != nil || got != "save" {
			t.Fatalf("expected save, got %#v (%v)", got, err)
		}
	})
}
