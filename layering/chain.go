package layering

import (
	"slices"

	"github.com/goliatone/go-locators/version"
)

// Direction tells which way a chain walks from the baseline.
type Direction int

const (
	// DirectionNone means the target equals the baseline; nothing is applied.
	DirectionNone Direction = iota
	// DirectionUpgrade walks towards newer versions, ascending.
	DirectionUpgrade
	// DirectionDowngrade walks towards older versions, descending.
	DirectionDowngrade
)

func (d Direction) String() string {
	switch d {
	case DirectionUpgrade:
		return "upgrade"
	case DirectionDowngrade:
		return "downgrade"
	default:
		return "none"
	}
}

// ParseDirection converts a string representation into a Direction.
// Unrecognised values yield DirectionNone.
func ParseDirection(value string) Direction {
	switch value {
	case "upgrade", "UPGRADE":
		return DirectionUpgrade
	case "downgrade", "DOWNGRADE":
		return DirectionDowngrade
	default:
		return DirectionNone
	}
}

// Chain is the ordered list of diff versions to fold for one
// (baseline, target) pair.
type Chain struct {
	baseline  version.Version
	target    version.Version
	direction Direction
	ordered   []version.Version
}

// NewChain selects from available the versions that lie between baseline and
// target and orders them in application order. The baseline's own version is
// never part of the chain; the target's version always is when available.
// Duplicate versions keep their first occurrence.
func NewChain(baseline, target version.Version, available []version.Version) Chain {
	chain := Chain{baseline: baseline, target: target}
	switch cmp := version.Compare(target, baseline); {
	case cmp == 0:
		return chain
	case cmp > 0:
		chain.direction = DirectionUpgrade
	default:
		chain.direction = DirectionDowngrade
	}

	seen := make(map[string]struct{}, len(available))
	unique := make([]version.Version, 0, len(available))
	for _, v := range available {
		key := v.Key()
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, v)
	}

	if chain.direction == DirectionDowngrade {
		selected := version.Between(unique, target, baseline, version.Bounds{LowerInclusive: true})
		chain.ordered = version.Sort(selected, version.Descending)
		return chain
	}
	selected := version.Between(unique, baseline, target, version.Bounds{UpperInclusive: true})
	chain.ordered = version.Sort(selected, version.Ascending)
	return chain
}

// Baseline returns the version the chain starts from.
func (c Chain) Baseline() version.Version {
	return c.baseline
}

// Target returns the version the chain resolves to.
func (c Chain) Target() version.Version {
	return c.target
}

// Direction reports whether the chain upgrades, downgrades or is a no-op.
func (c Chain) Direction() Direction {
	return c.direction
}

// Ordered returns the versions in application order.
func (c Chain) Ordered() []version.Version {
	return slices.Clone(c.ordered)
}

// Len returns the number of diffs in the chain.
func (c Chain) Len() int {
	return len(c.ordered)
}

// First returns the first diff applied (zero version if empty).
func (c Chain) First() version.Version {
	if len(c.ordered) == 0 {
		return version.Version{}
	}
	return c.ordered[0]
}

// Last returns the final diff applied (zero version if empty).
func (c Chain) Last() version.Version {
	if len(c.ordered) == 0 {
		return version.Version{}
	}
	return c.ordered[len(c.ordered)-1]
}

// Strings returns the ordered versions as identifiers.
func (c Chain) Strings() []string {
	out := make([]string, len(c.ordered))
	for i, v := range c.ordered {
		out[i] = v.String()
	}
	return out
}
