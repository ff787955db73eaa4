package locators

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-locators/internal/hydrate"
	"github.com/goliatone/go-locators/layering"
	"github.com/goliatone/go-locators/pkg/activity"
	"github.com/goliatone/go-locators/pkg/diffs"
	"github.com/goliatone/go-locators/version"
)

// Baseline is the complete locator tree of one product version that every
// resolution starts from.
type Baseline struct {
	Version  string
	Locators map[string]any
	Source   string
}

// ParseBaseline decodes a YAML or JSON baseline document.
func ParseBaseline(rawVersion string, document []byte, opts ...diffs.Option) (Baseline, error) {
	tree, err := diffs.Decode(document, opts...)
	if err != nil {
		return Baseline{}, &ResolveError{Baseline: rawVersion, Stage: StageParse, Err: err}
	}
	return Baseline{Version: rawVersion, Locators: tree}, nil
}

// Resolver produces version-specific locator sets from a baseline and a diff
// repository. It is safe for concurrent use.
type Resolver struct {
	baseline  version.Version
	base      *Set
	repo      diffs.Repository
	cfg       config
	logger    Logger
	extractor *Extractor
	emitter   *activity.Emitter

	mu    sync.Mutex
	cache map[string]*Set
}

// NewResolver validates the baseline version and copies the baseline tree.
// A nil repository behaves as an empty catalog.
func NewResolver(baseline Baseline, repo diffs.Repository, opts ...Option) (*Resolver, error) {
	baseVersion, err := version.Parse(baseline.Version)
	if err != nil {
		return nil, &ResolveError{Baseline: baseline.Version, Stage: StageParse, Err: err}
	}
	locators := baseline.Locators
	if locators == nil {
		locators = map[string]any{}
	}
	tree, err := hydrate.NewDecoder().Decode(hydrate.Context{Source: baseline.Source, Version: baseVersion.String()}, locators)
	if err != nil {
		return nil, &ResolveError{Baseline: baseline.Version, Stage: StageParse, Err: err}
	}
	if repo == nil {
		repo = diffs.NewMemoryRepository()
	}

	cfg := applyOptions(opts)
	extractor := newExtractor(cfg)
	return &Resolver{
		baseline:  baseVersion,
		base:      newSet(baseVersion, baseVersion, layering.NewChain(baseVersion, baseVersion, nil), tree, extractor),
		repo:      repo,
		cfg:       cfg,
		logger:    cfg.loggerOrNoop(),
		extractor: extractor,
		emitter:   cfg.emitter(),
		cache:     map[string]*Set{},
	}, nil
}

// Baseline returns the set for the baseline version.
func (r *Resolver) Baseline() *Set {
	return r.base
}

// Extractor returns the extractor attached to every set this resolver
// produces.
func (r *Resolver) Extractor() *Extractor {
	return r.extractor
}

// Plan returns the ordered diff versions Resolve would apply for target
// without loading any payload.
func (r *Resolver) Plan(ctx context.Context, target string) (layering.Chain, error) {
	targetVersion, err := r.parseTarget(target)
	if err != nil {
		return layering.Chain{}, err
	}
	return r.plan(ctx, targetVersion)
}

// Resolve returns the locator set for target. Every failure aborts the
// resolution; no partial set is ever returned.
func (r *Resolver) Resolve(ctx context.Context, target string) (*Set, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	set, cached, applied, err := r.resolve(ctx, target)
	r.report(ctx, target, set, cached, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.emitDiffsApplied(ctx, set, applied)
	return set, nil
}

// Invalidate drops every memoized set.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = map[string]*Set{}
}

// resolve folds the chain for target. The diffs it folded are returned
// separately so they are only announced once the whole fold succeeded.
func (r *Resolver) resolve(ctx context.Context, target string) (*Set, bool, []diffs.Diff, error) {
	targetVersion, err := r.parseTarget(target)
	if err != nil {
		return nil, false, nil, err
	}
	if targetVersion.Equal(r.baseline) {
		return r.base, false, nil, nil
	}

	key := targetVersion.Key()
	if cached := r.cached(key); cached != nil {
		return cached, true, nil, nil
	}

	chain, err := r.plan(ctx, targetVersion)
	if err != nil {
		return nil, false, nil, err
	}

	tree := r.base.tree
	applied := make([]diffs.Diff, 0, chain.Len())
	for _, v := range chain.Ordered() {
		diff, err := r.load(ctx, targetVersion, v)
		if err != nil {
			return nil, false, nil, err
		}
		tree = layering.Merge(tree, diff.Override)
		applied = append(applied, diffs.Diff{Version: diff.Version, Source: diff.Source})
	}

	set := newSet(targetVersion, r.baseline, chain, tree, r.extractor)
	return r.store(key, set), false, applied, nil
}

func (r *Resolver) parseTarget(target string) (version.Version, error) {
	targetVersion, err := version.Parse(target)
	if err != nil {
		return version.Version{}, &ResolveError{
			Baseline: r.baseline.String(),
			Target:   target,
			Stage:    StageParse,
			Err:      err,
		}
	}
	return targetVersion, nil
}

func (r *Resolver) plan(ctx context.Context, target version.Version) (layering.Chain, error) {
	if target.Equal(r.baseline) {
		return layering.NewChain(r.baseline, target, nil), nil
	}
	available, err := r.repo.List(ctx)
	if err != nil {
		return layering.Chain{}, &ResolveError{
			Baseline: r.baseline.String(),
			Target:   target.String(),
			Stage:    StageList,
			Err:      err,
		}
	}
	return layering.NewChain(r.baseline, target, available), nil
}

func (r *Resolver) load(ctx context.Context, target, v version.Version) (diffs.Diff, error) {
	fail := func(err error) error {
		return &ResolveError{
			Baseline: r.baseline.String(),
			Target:   target.String(),
			Version:  v.String(),
			Stage:    StageLoad,
			Err:      err,
		}
	}
	if err := ctx.Err(); err != nil {
		return diffs.Diff{}, fail(err)
	}
	diff, err := r.repo.Load(ctx, v)
	if err != nil {
		return diffs.Diff{}, fail(err)
	}
	return diff, nil
}

func (r *Resolver) cached(key string) *Set {
	if r.cfg.disableCaching {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache[key]
}

// store memoizes set unless a concurrent resolution got there first, in which
// case the earlier set is returned so every caller shares one instance.
func (r *Resolver) store(key string, set *Set) *Set {
	if r.cfg.disableCaching {
		return set
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.cache[key]; ok {
		return existing
	}
	r.cache[key] = set
	return set
}

func (r *Resolver) report(ctx context.Context, target string, set *Set, cached bool, duration time.Duration, err error) {
	event := ResolveLogEvent{
		Baseline: r.baseline.String(),
		Target:   strings.TrimSpace(target),
		Cached:   cached,
		Duration: duration,
		Err:      err,
	}
	if set != nil {
		event.Target = set.Version()
		event.Direction = set.Direction().String()
		event.Applied = set.Applied()
	}
	r.logger.LogResolve(event)

	if !r.emitter.Enabled() {
		return
	}
	input := activity.ResolutionInput{
		Baseline:  event.Baseline,
		Target:    event.Target,
		Direction: event.Direction,
		Applied:   event.Applied,
		Cached:    cached,
		Err:       err,
	}
	var emitErr error
	if err != nil {
		emitErr = r.emitter.Emit(ctx, activity.BuildResolveFailedEvent(input))
	} else {
		emitErr = r.emitter.Emit(ctx, activity.BuildResolvedEvent(input))
	}
	if emitErr != nil {
		r.logger.LogResolve(ResolveLogEvent{
			Baseline: event.Baseline,
			Target:   event.Target,
			Err:      fmt.Errorf("locators: activity hooks: %w", emitErr),
		})
	}
}

func (r *Resolver) emitDiffsApplied(ctx context.Context, set *Set, applied []diffs.Diff) {
	if len(applied) == 0 || !r.emitter.Enabled() {
		return
	}
	var errs []error
	for position, diff := range applied {
		err := r.emitter.Emit(ctx, activity.BuildDiffAppliedEvent(activity.DiffInput{
			Baseline: r.baseline.String(),
			Target:   set.Version(),
			Version:  diff.Version.String(),
			Source:   diff.Source,
			Position: position,
		}))
		if err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		r.logger.LogResolve(ResolveLogEvent{
			Baseline: r.baseline.String(),
			Target:   set.Version(),
			Err:      fmt.Errorf("locators: activity hooks: %w", err),
		})
	}
}
