package locators

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goliatone/go-locators/pkg/locator"
)

// Extractor evaluates locator.Extraction entries against element snapshots.
// It is safe for concurrent use.
type Extractor struct {
	engines       map[string]Evaluator
	defaultEngine string
	logger        Logger
}

// NewExtractor builds an extractor with the expr and cel engines, plus js
// when built with the js_eval tag. Evaluators passed through WithEvaluator
// replace or extend the built-in set.
func NewExtractor(opts ...Option) *Extractor {
	return newExtractor(applyOptions(opts))
}

func newExtractor(cfg config) *Extractor {
	engines := map[string]Evaluator{
		EngineExpr: NewExprEvaluator(ExprWithProgramCache(cfg.programCache), ExprWithFunctionRegistry(cfg.functions)),
		EngineCEL:  NewCELEvaluator(CELWithProgramCache(cfg.programCache), CELWithFunctionRegistry(cfg.functions)),
	}
	if jsEvaluatorAvailable() {
		engines[EngineJS] = NewJSEvaluator(JSWithProgramCache(cfg.programCache), JSWithFunctionRegistry(cfg.functions))
	}
	for name, evaluator := range cfg.evaluators {
		engines[name] = evaluator
	}
	return &Extractor{
		engines:       engines,
		defaultEngine: cfg.engine(),
		logger:        cfg.loggerOrNoop(),
	}
}

// Engines returns the configured engine names sorted alphabetically.
func (x *Extractor) Engines() []string {
	names := make([]string, 0, len(x.engines))
	for name := range x.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultEngine reports the engine used for extractions that do not name one.
func (x *Extractor) DefaultEngine() string {
	return x.defaultEngine
}

// Extract evaluates extraction against element.
func (x *Extractor) Extract(ctx context.Context, extraction locator.Extraction, element locator.Element) (any, error) {
	return x.ExtractWith(ExtractionContext{Context: ctx, Element: element}, extraction)
}

// ExtractWith evaluates extraction using ectx. Function-backed extractions
// take precedence over expressions.
func (x *Extractor) ExtractWith(ectx ExtractionContext, extraction locator.Extraction) (any, error) {
	ectx = ectx.withDefaults()
	if err := ectx.Context.Err(); err != nil {
		return nil, err
	}

	engine := "func"
	start := time.Now()
	var (
		value any
		err   error
	)
	if extraction.Func != nil {
		value, err = extraction.Func(ectx.Context, ectx.Element)
		if err != nil {
			err = wrapEvaluationError(engine, extraction.Name, ectx.Path, err)
		}
	} else {
		engine = normalizeEngine(extraction.Engine)
		if engine == "" {
			engine = x.defaultEngine
		}
		value, err = x.evaluate(ectx, engine, extraction.Expr)
	}

	x.logger.LogExtraction(ExtractionLogEvent{
		Engine:   engine,
		Name:     extraction.Name,
		Path:     ectx.Path,
		Expr:     extraction.Expr,
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (x *Extractor) evaluate(ectx ExtractionContext, engine, expression string) (any, error) {
	evaluator := x.engines[engine]
	if evaluator == nil {
		return nil, wrapEvaluationError(engine, expression, ectx.Path, fmt.Errorf("%w: %q", ErrNoEvaluator, engine))
	}
	value, err := evaluator.Evaluate(ectx, expression)
	if err != nil {
		return nil, wrapEvaluationError(engine, expression, ectx.Path, err)
	}
	return value, nil
}
