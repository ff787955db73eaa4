package locators

import (
	"context"
	"encoding/json"

	"github.com/goliatone/go-locators/layering"
)

// Layer names used in provenance records.
const (
	LayerBaseline = "baseline"
	LayerDiff     = "diff"
)

// Trace reports how the baseline and every applied diff contributed to one
// path of a resolved set.
type Trace struct {
	Path     string       `json:"path"`
	Baseline string       `json:"baseline"`
	Target   string       `json:"target"`
	Layers   []Provenance `json:"layers"`
	Found    bool         `json:"found"`
	Value    any          `json:"-"`
	Display  string       `json:"value,omitempty"`
}

// Provenance details whether one layer set the traced path and to what.
type Provenance struct {
	Layer   string `json:"layer"`
	Version string `json:"version"`
	Source  string `json:"source,omitempty"`
	Found   bool   `json:"found"`
	Value   any    `json:"-"`
	Display string `json:"value,omitempty"`
}

// Trace resolves target and records, for the baseline and each applied diff
// in order, whether that layer set path.
func (r *Resolver) Trace(ctx context.Context, target, path string) (Trace, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	targetVersion, err := r.parseTarget(target)
	if err != nil {
		return Trace{}, err
	}
	chain, err := r.plan(ctx, targetVersion)
	if err != nil {
		return Trace{}, err
	}

	trace := Trace{
		Path:     path,
		Baseline: r.baseline.String(),
		Target:   targetVersion.String(),
		Layers:   make([]Provenance, 0, chain.Len()+1),
	}
	trace.Layers = append(trace.Layers, provenance(LayerBaseline, r.baseline.String(), r.base.tree, path))
	for _, v := range chain.Ordered() {
		diff, err := r.load(ctx, targetVersion, v)
		if err != nil {
			return Trace{}, err
		}
		layer := provenance(LayerDiff, diff.Version.String(), diff.Override, path)
		layer.Source = diff.Source
		trace.Layers = append(trace.Layers, layer)
	}

	set, err := r.Resolve(ctx, target)
	if err != nil {
		return Trace{}, err
	}
	if value, ok := set.get(path); ok {
		trace.Found = true
		trace.Value = layering.Clone(value)
		trace.Display = describeValue(value)
	}
	return trace, nil
}

// Contributors returns the layers that set the traced path.
func (t Trace) Contributors() []Provenance {
	var out []Provenance
	for _, layer := range t.Layers {
		if layer.Found {
			out = append(out, layer)
		}
	}
	return out
}

// ToJSON serialises the trace for logging or transport helpers. Values are
// rendered as display strings.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a payload produced by ToJSON. Value fields are
// not restored.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

func provenance(layer, versionLabel string, tree map[string]any, path string) Provenance {
	record := Provenance{Layer: layer, Version: versionLabel}
	if value, ok := lookupPath(tree, path); ok {
		record.Found = true
		record.Value = layering.Clone(value)
		record.Display = describeValue(value)
	}
	return record
}
