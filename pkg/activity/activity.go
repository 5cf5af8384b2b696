package activity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// Event describes something that happened to a catalog object.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Hook receives emitted events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// Hooks is an ordered hook list.
type Hooks []Hook

// Config toggles emission and sets the default channel stamped on events.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter fans events out to its hooks.
type Emitter struct {
	hooks Hooks
	cfg   Config
	now   func() time.Time
}

// NewEmitter builds an emitter. An emitter without hooks is disabled.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	filtered := make(Hooks, 0, len(hooks))
	for _, hook := range hooks {
		if hook != nil {
			filtered = append(filtered, hook)
		}
	}
	return &Emitter{
		hooks: filtered,
		cfg:   cfg,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Enabled reports whether emitted events reach any hook.
func (e *Emitter) Enabled() bool {
	return e != nil && e.cfg.Enabled && len(e.hooks) > 0
}

// Emit stamps the channel and time when missing and notifies every hook.
// Hook errors are joined; one failing hook does not stop the others.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() || strings.TrimSpace(event.Verb) == "" {
		return nil
	}
	if event.Channel == "" {
		event.Channel = e.cfg.Channel
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.now()
	}
	var errs []error
	for _, hook := range e.hooks {
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CaptureHook keeps every event it receives.
type CaptureHook struct {
	mu     sync.Mutex
	Events []Event
}

func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, event)
	return nil
}
