package jobs

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"
)

// AuditEvent records a catalog change applied by a batch job.
type AuditEvent struct {
	EntityType string
	EntityID   string
	Action     string
	ActorID    string
	OccurredAt time.Time
	Metadata   map[string]any
}

// AuditRecorder receives the events of finished jobs. Recording errors are
// ignored by the jobs.
type AuditRecorder interface {
	Record(ctx context.Context, event AuditEvent) error
}

// InMemoryAuditRecorder keeps audit events in memory. Workers record
// concurrently so access is serialised.
type InMemoryAuditRecorder struct {
	mu     sync.Mutex
	events []AuditEvent
	err    error
}

func NewInMemoryAuditRecorder() *InMemoryAuditRecorder {
	return &InMemoryAuditRecorder{}
}

func (r *InMemoryAuditRecorder) Record(_ context.Context, event AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	event.Metadata = maps.Clone(event.Metadata)
	r.events = append(r.events, event)
	return nil
}

// Events returns a snapshot, oldest first.
func (r *InMemoryAuditRecorder) Events() []AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// ForEntity filters Events by entity.
func (r *InMemoryAuditRecorder) ForEntity(entityType, entityID string) []AuditEvent {
	return slices.DeleteFunc(r.Events(), func(event AuditEvent) bool {
		return event.EntityType != entityType || event.EntityID != entityID
	})
}

// ByActor filters Events by the actor that triggered the job.
func (r *InMemoryAuditRecorder) ByActor(actorID string) []AuditEvent {
	return slices.DeleteFunc(r.Events(), func(event AuditEvent) bool {
		return event.ActorID != actorID
	})
}

// Fail makes subsequent Record calls return err.
func (r *InMemoryAuditRecorder) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}
