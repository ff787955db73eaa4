package locators

import (
	"context"
	"time"

	"github.com/goliatone/go-locators/pkg/locator"
)

// Engine names understood by the built-in extractor.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// ExtractionContext carries the inputs an extraction expression is evaluated
// against.
type ExtractionContext struct {
	Context  context.Context
	Element  locator.Element
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	Version  string
	Path     string
}

func (ctx ExtractionContext) withDefaults() ExtractionContext {
	if ctx.Context == nil {
		ctx.Context = context.Background()
	}
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx ExtractionContext) timestamp() time.Time {
	if ctx.Now == nil {
		return time.Now()
	}
	return *ctx.Now
}

// binding exposes the context as expression variables: the element fields at
// the top level (tag, text, attrs, classes), the element itself, and now,
// args, metadata, version and path.
func (ctx ExtractionContext) binding() map[string]any {
	element := ctx.Element.Map()
	env := map[string]any{
		"element":  element,
		"now":      ctx.timestamp(),
		"args":     ctx.Args,
		"metadata": ctx.Metadata,
		"version":  ctx.Version,
		"path":     ctx.Path,
	}
	for key, value := range element {
		env[key] = value
	}
	return env
}

// bindingNames lists the variables binding always provides.
var bindingNames = []string{"element", "tag", "text", "attrs", "classes", "now", "args", "metadata", "version", "path"}

// Evaluator executes extraction expressions against an element snapshot.
type Evaluator interface {
	Evaluate(ctx ExtractionContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule is a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx ExtractionContext) (any, error)
}
