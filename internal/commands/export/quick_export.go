package exportcmd

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-pim/internal/commands"
	"github.com/goliatone/go-pim/internal/export"
	"github.com/goliatone/go-pim/internal/jobs"
	"github.com/goliatone/go-pim/pkg/interfaces"
)

const quickExportMessageType = "pim.export.quick"

// Runner executes one quick export.
type Runner interface {
	Run(ctx context.Context, req jobs.QuickExportRequest) (*jobs.QuickExportResult, error)
}

// QuickExportCommand requests a quick export of the selected products and
// product models. Parameters carries the raw job parameters (scope,
// selected_locales, selected_properties, with_media).
type QuickExportCommand struct {
	Username           string         `json:"username"`
	Parameters         map[string]any `json:"parameters"`
	ProductIdentifiers []string       `json:"product_identifiers,omitempty"`
	ProductModelCodes  []string       `json:"product_model_codes,omitempty"`
	WorkingDirectory   string         `json:"working_directory"`
	Format             string         `json:"format,omitempty"`
}

// Type implements command.Message.
func (QuickExportCommand) Type() string { return quickExportMessageType }

// Validate checks the envelope of the command. Parameter semantics are
// checked by the export processor, which reports them on the step.
func (m QuickExportCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Username, validation.Required.ErrorObject(
			validation.NewError("pim.export.quick.username_required", "username is required"))),
		validation.Field(&m.WorkingDirectory, validation.Required.ErrorObject(
			validation.NewError("pim.export.quick.working_directory_required", "working_directory is required"))),
		validation.Field(&m.Format, validation.In(export.FormatCSV, export.FormatJSON, "json").ErrorObject(
			validation.NewError("pim.export.quick.format_invalid", "format must be csv or jsonl"))),
		validation.Field(&m.ProductIdentifiers, validation.Each(validation.Required)),
		validation.Field(&m.ProductModelCodes, validation.Each(validation.Required)),
	)
}

// QuickExportHandler runs the export runner behind the shared command handler.
type QuickExportHandler struct {
	inner  *commands.Handler[QuickExportCommand]
	result func(*jobs.QuickExportResult)
}

// HandlerOption customises the quick export handler.
type HandlerOption func(*QuickExportHandler)

// WithResult receives the result of every run, including failed ones.
func WithResult(fn func(*jobs.QuickExportResult)) HandlerOption {
	return func(h *QuickExportHandler) {
		h.result = fn
	}
}

// NewQuickExportHandler constructs a handler wired to runner.
func NewQuickExportHandler(runner Runner, logger interfaces.Logger, opts ...HandlerOption) *QuickExportHandler {
	handler := &QuickExportHandler{}
	for _, opt := range opts {
		if opt != nil {
			opt(handler)
		}
	}

	exec := func(ctx context.Context, msg QuickExportCommand) error {
		result, err := runner.Run(ctx, jobs.QuickExportRequest{
			Username:           strings.TrimSpace(msg.Username),
			Parameters:         msg.Parameters,
			ProductIdentifiers: msg.ProductIdentifiers,
			ProductModelCodes:  msg.ProductModelCodes,
			WorkingDirectory:   msg.WorkingDirectory,
			Format:             msg.Format,
		})
		if handler.result != nil && result != nil {
			handler.result(result)
		}
		return err
	}

	baseLogger := commands.EnsureLogger(logger)
	handler.inner = commands.NewHandler(exec,
		commands.WithLogger[QuickExportCommand](baseLogger),
		commands.WithOperation[QuickExportCommand]("export.quick"),
		commands.WithTimeout[QuickExportCommand](0),
		commands.WithMessageFields(func(msg QuickExportCommand) map[string]any {
			fields := map[string]any{
				"job_code": jobs.JobCode(msg.Format),
				"username": msg.Username,
			}
			if len(msg.ProductIdentifiers) > 0 {
				fields["products"] = len(msg.ProductIdentifiers)
			}
			if len(msg.ProductModelCodes) > 0 {
				fields["product_models"] = len(msg.ProductModelCodes)
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[QuickExportCommand](baseLogger)),
	)
	return handler
}

// Execute satisfies command.Commander[QuickExportCommand].
func (h *QuickExportHandler) Execute(ctx context.Context, msg QuickExportCommand) error {
	return h.inner.Execute(ctx, msg)
}
