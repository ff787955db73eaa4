package locators

import "time"

// Limits applied when a JSWith option does not override them. Extraction
// scripts read one element snapshot, so anything slower or deeper is a bug in
// the locator file.
const (
	DefaultJSTimeout      = 250 * time.Millisecond
	DefaultJSMaxCallStack = 256
)

// jsEvaluatorConfig is shared by the goja evaluator and its stub so locator
// packages compile the same options with or without the js_eval tag.
type jsEvaluatorConfig struct {
	cache        ProgramCache
	registry     *FunctionRegistry
	timeout      time.Duration
	maxCallStack int
}

// JSEvaluatorOption configures the `js` extraction engine.
type JSEvaluatorOption func(*jsEvaluatorConfig)

// JSWithProgramCache shares compiled scripts through cache.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(cfg *jsEvaluatorConfig) {
		cfg.cache = cache
	}
}

// JSWithFunctionRegistry exposes the registry's functions as script globals
// and through call(name, ...).
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(cfg *jsEvaluatorConfig) {
		if registry == nil {
			return
		}
		cfg.registry = registry.Clone()
	}
}

// JSWithTimeout interrupts a single extraction after d. Zero or negative
// disables the limit; the caller's context still applies.
func JSWithTimeout(d time.Duration) JSEvaluatorOption {
	return func(cfg *jsEvaluatorConfig) {
		cfg.timeout = d
	}
}

// JSWithMaxCallStack bounds script recursion depth. Zero or negative keeps
// goja's own limit.
func JSWithMaxCallStack(depth int) JSEvaluatorOption {
	return func(cfg *jsEvaluatorConfig) {
		cfg.maxCallStack = depth
	}
}

func applyJSEvaluatorOptions(opts []JSEvaluatorOption) jsEvaluatorConfig {
	cfg := jsEvaluatorConfig{
		timeout:      DefaultJSTimeout,
		maxCallStack: DefaultJSMaxCallStack,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
