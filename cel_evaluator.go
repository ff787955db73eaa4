package locators

import (
	"fmt"
	"sync"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// maxCELArity bounds the overloads declared for registry functions.
const maxCELArity = 3

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL evaluator.
// Registered functions accept up to three dynamically typed arguments.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry

	envOnce sync.Once
	env     *celgo.Env
	envErr  error
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(ctx ExtractionContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *celEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError(EngineCEL, fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &celCompiledRule{
		program:    program,
		expression: expression,
	}, nil
}

func (e *celEvaluator) loadOrCompile(expression string) (celgo.Program, error) {
	key := cacheKey(EngineCEL, expression)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(celgo.Program); ok {
				return program, nil
			}
		}
	}

	env, err := e.environment()
	if err != nil {
		return nil, wrapEvaluatorError(EngineCEL, err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapEvaluationError(EngineCEL, expression, "", issues.Err())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, wrapEvaluationError(EngineCEL, expression, "", err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

// environment declares the bindings and call() first, then one function per
// registry entry. Names CEL already defines (size, int, double...) keep their
// builtin meaning and stay reachable through call("name", ...).
func (e *celEvaluator) environment() (*celgo.Env, error) {
	e.envOnce.Do(func() {
		base, err := celgo.NewEnv(e.baseOptions()...)
		if err != nil {
			e.envErr = err
			return
		}
		e.env, e.envErr = base.Extend(e.functionOptions(base)...)
	})
	return e.env, e.envErr
}

func (e *celEvaluator) baseOptions() []celgo.EnvOption {
	opts := make([]celgo.EnvOption, 0, len(bindingNames)+1)
	for _, name := range bindingNames {
		if name == "now" {
			opts = append(opts, celgo.Variable(name, celgo.TimestampType))
			continue
		}
		opts = append(opts, celgo.Variable(name, celgo.DynType))
	}
	if e.registry == nil {
		return opts
	}

	var callOverloads []celgo.FunctionOpt
	for arity := 0; arity <= maxCELArity; arity++ {
		params := append([]*celgo.Type{celgo.StringType}, dynParams(arity)...)
		callOverloads = append(callOverloads, celgo.Overload(
			fmt.Sprintf("call_string_dyn%d", arity),
			params,
			celgo.DynType,
			celgo.FunctionBinding(e.callBinding()),
		))
	}
	return append(opts, celgo.Function("call", callOverloads...))
}

func (e *celEvaluator) functionOptions(base *celgo.Env) []celgo.EnvOption {
	var opts []celgo.EnvOption
	for _, name := range e.registry.Names() {
		if base.HasFunction(name) {
			continue
		}
		var overloads []celgo.FunctionOpt
		for arity := 0; arity <= maxCELArity; arity++ {
			overloads = append(overloads, celgo.Overload(
				fmt.Sprintf("%s_dyn%d", name, arity),
				dynParams(arity),
				celgo.DynType,
				celgo.FunctionBinding(e.functionBinding(name)),
			))
		}
		opts = append(opts, celgo.Function(name, overloads...))
	}
	return opts
}

func dynParams(arity int) []*celgo.Type {
	params := make([]*celgo.Type, arity)
	for i := range params {
		params[i] = celgo.DynType
	}
	return params
}

type celCompiledRule struct {
	program    celgo.Program
	expression string
}

func (r *celCompiledRule) Evaluate(ctx ExtractionContext) (any, error) {
	if r.program == nil {
		return nil, wrapEvaluatorError(EngineCEL, fmt.Errorf("compiled rule missing program"))
	}
	ctx = ctx.withDefaults()
	out, _, err := r.program.ContextEval(ctx.Context, ctx.binding())
	if err != nil {
		return nil, wrapEvaluationError(EngineCEL, r.expression, ctx.Path, err)
	}
	return out.Value(), nil
}

func (e *celEvaluator) callBinding() func(...ref.Val) ref.Val {
	return func(values ...ref.Val) ref.Val {
		if len(values) == 0 {
			return types.NewErr("locators: call requires function name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("locators: call name must be string")
		}
		return e.invoke(name, values[1:])
	}
}

func (e *celEvaluator) functionBinding(name string) func(...ref.Val) ref.Val {
	return func(values ...ref.Val) ref.Val {
		return e.invoke(name, values)
	}
}

func (e *celEvaluator) invoke(name string, values []ref.Val) ref.Val {
	args := make([]any, 0, len(values))
	for _, val := range values {
		args = append(args, val.Value())
	}
	result, err := e.registry.Call(name, args...)
	if err != nil {
		return types.NewErr("%s", err.Error())
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}
