package usersink

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-pim/pkg/activity"
	"github.com/goliatone/go-pim/pkg/interfaces"
	"github.com/google/uuid"
)

// Hook forwards activity events to a go-users activity sink.
type Hook struct {
	Sink interfaces.ActivitySink
}

var _ activity.Hook = Hook{}

// Notify maps the event onto a go-users activity record. Events without a
// verb are dropped. Identifiers that are not UUIDs map to uuid.Nil.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil || strings.TrimSpace(event.Verb) == "" {
		return nil
	}
	data := make(map[string]any, len(event.Metadata)+2)
	maps.Copy(data, event.Metadata)
	if event.DefinitionCode != "" {
		data["definition_code"] = event.DefinitionCode
	}
	if len(event.Recipients) > 0 {
		data["recipients"] = append([]string(nil), event.Recipients...)
	}
	return h.Sink.Log(ctx, interfaces.ActivityRecord{
		ActorID:    parseUUID(event.ActorID),
		UserID:     parseUUID(event.UserID),
		TenantID:   parseUUID(event.TenantID),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		Data:       data,
		OccurredAt: event.OccurredAt,
	})
}

func parseUUID(value string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
