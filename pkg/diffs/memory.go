package diffs

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-locators/internal/hydrate"
	"github.com/goliatone/go-locators/layering"
	"github.com/goliatone/go-locators/version"
)

// MemoryRepository is an in-memory Repository for tests and catalogs built in
// code. Overrides are copied on Put and on Load.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]Diff
	order   []string
	decoder *hydrate.Decoder
}

func NewMemoryRepository(opts ...Option) *MemoryRepository {
	return &MemoryRepository{
		records: map[string]Diff{},
		decoder: applyOptions(opts).decoder(),
	}
}

// Put decodes override with the repository's decoder, so {$xpath: ...} and
// the other entry markers become entries, and stores it under the given
// version, replacing an equal version already present.
func (r *MemoryRepository) Put(rawVersion string, override map[string]any) error {
	v, err := version.Parse(rawVersion)
	if err != nil {
		return err
	}
	if override == nil {
		override = map[string]any{}
	}
	source := "memory:" + v.String()
	tree, err := r.decoder.Decode(hydrate.Context{Source: source, Version: v.String()}, override)
	if err != nil {
		return fmt.Errorf("diffs: %w", err)
	}
	r.store(Diff{Version: v, Override: tree, Source: source})
	return nil
}

// PutDocument decodes a YAML or JSON document and stores it.
func (r *MemoryRepository) PutDocument(rawVersion string, document []byte) error {
	v, err := version.Parse(rawVersion)
	if err != nil {
		return err
	}
	source := "memory:" + v.String()
	tree, err := r.decoder.DecodeBytes(hydrate.Context{Source: source, Version: v.String()}, document)
	if err != nil {
		return fmt.Errorf("diffs: %w", err)
	}
	r.store(Diff{Version: v, Override: tree, Source: source})
	return nil
}

func (r *MemoryRepository) store(diff Diff) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := diff.Version.Key()
	if _, exists := r.records[key]; !exists {
		r.order = append(r.order, key)
	}
	r.records[key] = diff
}

// List returns the stored versions in insertion order.
func (r *MemoryRepository) List(ctx context.Context) ([]version.Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]version.Version, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.records[key].Version)
	}
	return out, nil
}

// Load returns a copy of the diff stored for v.
func (r *MemoryRepository) Load(ctx context.Context, v version.Version) (Diff, error) {
	if err := ctx.Err(); err != nil {
		return Diff{}, err
	}
	r.mu.RLock()
	diff, ok := r.records[v.Key()]
	r.mu.RUnlock()
	if !ok {
		return Diff{}, notFound(v)
	}
	diff.Override = layering.Clone(diff.Override)
	return diff, nil
}
