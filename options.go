package locators

import (
	"strings"

	"github.com/goliatone/go-locators/pkg/activity"
)

// Option configures a Resolver or an Extractor.
type Option func(*config)

type config struct {
	logger         Logger
	evaluators     map[string]Evaluator
	defaultEngine  string
	programCache   ProgramCache
	functions      *FunctionRegistry
	activityHooks  activity.Hooks
	activity       activity.Config
	activitySet    bool
	disableCaching bool
}

func applyOptions(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (cfg config) loggerOrNoop() Logger {
	if cfg.logger != nil {
		return cfg.logger
	}
	return noopLogger{}
}

func (cfg config) engine() string {
	if cfg.defaultEngine != "" {
		return cfg.defaultEngine
	}
	return EngineExpr
}

// WithEvaluator registers e under engine, replacing the built-in evaluator of
// the same name.
func WithEvaluator(engine string, e Evaluator) Option {
	return func(cfg *config) {
		engine = normalizeEngine(engine)
		if engine == "" || e == nil {
			return
		}
		if cfg.evaluators == nil {
			cfg.evaluators = map[string]Evaluator{}
		}
		cfg.evaluators[engine] = e
	}
}

// WithDefaultEngine sets the engine used for extractions that do not name one.
func WithDefaultEngine(engine string) Option {
	return func(cfg *config) {
		cfg.defaultEngine = normalizeEngine(engine)
	}
}

// WithProgramCache shares cache between the built-in evaluators.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *config) {
		cfg.programCache = cache
	}
}

// WithCache toggles memoization of resolved sets per target version. Caching
// is on by default.
func WithCache(enabled bool) Option {
	return func(cfg *config) {
		cfg.disableCaching = !enabled
	}
}

func normalizeEngine(engine string) string {
	return strings.ToLower(strings.TrimSpace(engine))
}
