package locators

import "github.com/goliatone/go-locators/pkg/activity"

// WithActivityHooks attaches activity hooks notified after every resolution.
// Hooks are cloned and nil entries dropped. Emission is enabled unless
// WithActivityConfig turns it off.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := activity.Compact(hooks)
	return func(cfg *config) {
		cfg.activityHooks = normalized
	}
}

// WithActivityConfig sets the channel, default identity and enablement used
// when emitting activity events.
func WithActivityConfig(activityCfg activity.Config) Option {
	return func(cfg *config) {
		cfg.activity = activityCfg
		cfg.activitySet = true
	}
}

func (cfg config) emitter() *activity.Emitter {
	activityCfg := cfg.activity
	if !cfg.activitySet {
		activityCfg.Enabled = true
	}
	return activity.NewEmitter(cfg.activityHooks, activityCfg)
}

// ActivityHooks returns a copy of the hooks configured on the resolver.
func (r *Resolver) ActivityHooks() activity.Hooks {
	if r == nil {
		return nil
	}
	return activity.Compact(r.cfg.activityHooks)
}
