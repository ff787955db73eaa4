// Package usersink records locator resolutions in a go-users activity feed.
package usersink

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-locators/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook writes resolver events to a go-users ActivitySink.
//
// Verbs limits which events are recorded; empty records every locator verb.
// SkipCached drops resolutions served from the resolver cache, which repeat
// on every page object construction. Channel labels events that did not
// carry one, typically the test suite name.
type Hook struct {
	Sink       usertypes.ActivitySink
	Verbs      []string
	SkipCached bool
	Channel    string
}

// Notify records event when it passes the hook's filters.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	event = activity.NormalizeEvent(event)
	if !h.accepts(event) {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return h.Sink.Log(ctx, h.record(event))
}

func (h Hook) accepts(event activity.Event) bool {
	if event.Verb == "" || event.ObjectType == "" || event.ObjectID == "" {
		return false
	}
	if len(h.Verbs) > 0 && !slices.Contains(h.Verbs, event.Verb) {
		return false
	}
	if h.SkipCached && event.Verb == activity.VerbResolved {
		if cached, _ := event.Metadata["cached"].(bool); cached {
			return false
		}
	}
	return true
}

func (h Hook) record(event activity.Event) usertypes.ActivityRecord {
	record := usertypes.ActivityRecord{
		ActorID:    parseUUID(event.ActorID),
		UserID:     parseUUID(event.UserID),
		TenantID:   parseUUID(event.TenantID),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		Data:       map[string]any{},
		OccurredAt: event.OccurredAt,
	}
	if record.Channel == "" {
		record.Channel = h.Channel
	}
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now()
	}
	for key, value := range event.Metadata {
		record.Data[key] = value
	}
	// CI job names and hostnames are not UUIDs
	if event.ActorID != "" && record.ActorID == uuid.Nil {
		record.Data["actor"] = event.ActorID
	}
	if len(record.Data) == 0 {
		record.Data = nil
	}
	return record
}

func parseUUID(input string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(input))
	if err != nil {
		return uuid.Nil
	}
	return id
}
