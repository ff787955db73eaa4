package activity

import (
	"strings"
	"time"
)

const (
	VerbResolved      = "locators.resolved"
	VerbResolveFailed = "locators.resolve_failed"
	VerbDiffApplied   = "locators.diff.applied"

	ObjectLocators = "locators"
	ObjectDiff     = "locators.diff"
)

// ResolutionInput describes one resolution of a locator set.
type ResolutionInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	Channel    string
	Baseline   string
	Target     string
	Direction  string
	Applied    []string
	Cached     bool
	Err        error
	Metadata   map[string]any
	OccurredAt time.Time
}

// DiffInput describes one diff folded into a running locator set.
type DiffInput struct {
	Channel    string
	Baseline   string
	Target     string
	Version    string
	Source     string
	Position   int
	OccurredAt time.Time
}

// BuildResolvedEvent constructs the event emitted after a successful
// resolution. ObjectID is the target version.
func BuildResolvedEvent(input ResolutionInput) Event {
	return buildResolutionEvent(VerbResolved, input)
}

// BuildResolveFailedEvent constructs the event emitted when resolution
// aborts.
func BuildResolveFailedEvent(input ResolutionInput) Event {
	return buildResolutionEvent(VerbResolveFailed, input)
}

// BuildDiffAppliedEvent constructs the event emitted for each folded diff.
// ObjectID is the diff version.
func BuildDiffAppliedEvent(input DiffInput) Event {
	metadata := map[string]any{
		"baseline": input.Baseline,
		"target":   input.Target,
		"position": input.Position,
	}
	if input.Source != "" {
		metadata["source"] = input.Source
	}
	return Event{
		Verb:       VerbDiffApplied,
		ObjectType: ObjectDiff,
		ObjectID:   strings.TrimSpace(input.Version),
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func buildResolutionEvent(verb string, input ResolutionInput) Event {
	metadata := ensureMetadata(cloneMap(input.Metadata))
	metadata["baseline"] = input.Baseline
	if input.Direction != "" {
		metadata["direction"] = input.Direction
	}
	if len(input.Applied) > 0 {
		metadata["applied"] = append([]string{}, input.Applied...)
	}
	if input.Cached {
		metadata["cached"] = true
	}
	if input.Err != nil {
		metadata["error"] = input.Err.Error()
	}

	objectID := strings.TrimSpace(input.Target)
	if objectID == "" {
		objectID = ObjectLocators
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: ObjectLocators,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
