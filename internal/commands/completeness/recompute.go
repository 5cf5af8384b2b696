package completenesscmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-pim/internal/commands"
	"github.com/goliatone/go-pim/internal/jobs"
	"github.com/goliatone/go-pim/pkg/interfaces"
)

const recomputeCompletenessMessageType = "pim.completeness.recompute"

// Recomputer recalculates and stores product completeness.
type Recomputer interface {
	Recompute(ctx context.Context, req jobs.RecomputeRequest) (*jobs.RecomputeSummary, error)
}

// RecomputeCompletenessCommand requests a completeness recompute for the
// listed products, or for the whole catalog when All is set.
type RecomputeCompletenessCommand struct {
	ProductIdentifiers []string `json:"product_identifiers,omitempty"`
	All                bool     `json:"all,omitempty"`
	ActorID            string   `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (RecomputeCompletenessCommand) Type() string { return recomputeCompletenessMessageType }

// Validate requires exactly one selection mode.
func (m RecomputeCompletenessCommand) Validate() error {
	errs := validation.Errors{}
	switch {
	case m.All && len(m.ProductIdentifiers) > 0:
		errs["product_identifiers"] = validation.NewError("pim.completeness.recompute.selection_conflict", "product_identifiers cannot be combined with all")
	case !m.All && len(m.ProductIdentifiers) == 0:
		errs["product_identifiers"] = validation.NewError("pim.completeness.recompute.selection_required", "product_identifiers are required unless all is set")
	}
	if len(errs) > 0 {
		return errs
	}
	return validation.ValidateStruct(&m,
		validation.Field(&m.ProductIdentifiers, validation.Each(validation.Required)),
	)
}

// RecomputeCompletenessHandler runs the recompute worker behind the shared
// command handler.
type RecomputeCompletenessHandler struct {
	inner   *commands.Handler[RecomputeCompletenessCommand]
	summary func(*jobs.RecomputeSummary)
}

// HandlerOption customises the recompute handler.
type HandlerOption func(*RecomputeCompletenessHandler)

// WithSummary receives the summary of every successful run.
func WithSummary(fn func(*jobs.RecomputeSummary)) HandlerOption {
	return func(h *RecomputeCompletenessHandler) {
		h.summary = fn
	}
}

// NewRecomputeCompletenessHandler constructs a handler wired to worker. The
// default timeout is disabled; cancellation comes from the caller context.
func NewRecomputeCompletenessHandler(worker Recomputer, logger interfaces.Logger, opts ...HandlerOption) *RecomputeCompletenessHandler {
	handler := &RecomputeCompletenessHandler{}
	for _, opt := range opts {
		if opt != nil {
			opt(handler)
		}
	}

	exec := func(ctx context.Context, msg RecomputeCompletenessCommand) error {
		summary, err := worker.Recompute(ctx, jobs.RecomputeRequest{
			ProductIdentifiers: msg.ProductIdentifiers,
			All:                msg.All,
			ActorID:            msg.ActorID,
		})
		if err != nil {
			return err
		}
		if handler.summary != nil {
			handler.summary(summary)
		}
		return nil
	}

	baseLogger := commands.EnsureLogger(logger)
	handler.inner = commands.NewHandler(exec,
		commands.WithLogger[RecomputeCompletenessCommand](baseLogger),
		commands.WithOperation[RecomputeCompletenessCommand]("completeness.recompute"),
		commands.WithTimeout[RecomputeCompletenessCommand](0),
		commands.WithMessageFields(func(msg RecomputeCompletenessCommand) map[string]any {
			if msg.All {
				return map[string]any{"all": true}
			}
			return map[string]any{"products": len(msg.ProductIdentifiers)}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RecomputeCompletenessCommand](baseLogger)),
	)
	return handler
}

// Execute satisfies command.Commander[RecomputeCompletenessCommand].
func (h *RecomputeCompletenessHandler) Execute(ctx context.Context, msg RecomputeCompletenessCommand) error {
	return h.inner.Execute(ctx, msg)
}
