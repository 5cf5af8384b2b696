package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-pim/catalog"
	"github.com/goliatone/go-pim/internal/batch"
	catalogrepo "github.com/goliatone/go-pim/internal/catalog"
	"github.com/goliatone/go-pim/internal/export"
	"github.com/goliatone/go-pim/internal/logging"
	"github.com/goliatone/go-pim/internal/security"
	"github.com/goliatone/go-pim/pkg/activity"
	"github.com/goliatone/go-pim/pkg/interfaces"
)

// StepName is the name of the single quick export step.
const StepName = "perform"

// ProductModelRepository loads the product models to export.
type ProductModelRepository interface {
	List(ctx context.Context) ([]*catalog.ProductModel, error)
	ListByCodes(ctx context.Context, codes []string) ([]*catalog.ProductModel, error)
}

// QuickExportRequest describes one quick export run. With no identifiers
// and no codes every product and product model is exported.
type QuickExportRequest struct {
	Username           string
	Parameters         map[string]any
	ProductIdentifiers []string
	ProductModelCodes  []string
	WorkingDirectory   string
	Format             string
}

// QuickExportResult reports the executed step and the written file.
type QuickExportResult struct {
	Job  *batch.JobExecution
	Step *batch.StepExecution
	Path string
}

// ExportRunner runs the quick export step: it loads the selected entities,
// processes them into rows and writes the rows into the working directory.
type ExportRunner struct {
	products ProductRepository
	models   ProductModelRepository
	deps     export.Dependencies
	audit    AuditRecorder
	activity *activity.Emitter
	logger   interfaces.Logger
	now      func() time.Time
}

// ExportOption customises the runner.
type ExportOption func(*ExportRunner)

func WithExportAuditRecorder(recorder AuditRecorder) ExportOption {
	return func(r *ExportRunner) {
		r.audit = recorder
	}
}

func WithExportActivityEmitter(emitter *activity.Emitter) ExportOption {
	return func(r *ExportRunner) {
		if emitter != nil {
			r.activity = emitter
		}
	}
}

func WithExportClock(clock func() time.Time) ExportOption {
	return func(r *ExportRunner) {
		if clock != nil {
			r.now = clock
		}
	}
}

func WithExportLogger(logger interfaces.Logger) ExportOption {
	return func(r *ExportRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewExportRunner wires the runner. The processor collaborators in deps are
// shared by every run; the detacher is replaced per run by an identity map
// when left nil.
func NewExportRunner(products ProductRepository, models ProductModelRepository, deps export.Dependencies, opts ...ExportOption) *ExportRunner {
	r := &ExportRunner{
		products: products,
		models:   models,
		deps:     deps,
		logger:   logging.NoOp(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// JobCode returns the job code of a quick export in the given format.
func JobCode(format string) string {
	if format == "" {
		format = export.FormatCSV
	}
	return format + "_product_quick_export"
}

// Run executes the step. Configuration and loading errors fail the step and
// are returned; items the normalizer rejects are skipped with a warning.
func (r *ExportRunner) Run(ctx context.Context, req QuickExportRequest) (*QuickExportResult, error) {
	job := batch.NewJobExecution(JobCode(req.Format), req.Username, batch.NewJobParameters(req.Parameters))
	job.SetWorkingDirectory(req.WorkingDirectory)
	step := batch.NewStepExecution(StepName, job)
	result := &QuickExportResult{Job: job, Step: step}

	logger := logging.WithJobContext(r.logger, job.JobCode, step.Name, job.User)
	started := r.now()
	job.StartedAt = started
	job.Status = batch.StatusStarted
	step.Start(started)

	path, err := r.run(ctx, req, step, logger)
	finished := r.now()
	step.Finish(finished, err)
	job.EndedAt = finished
	job.Status = step.Status()
	if err != nil {
		logger.Error("jobs.export.failed", "error", err)
		return result, err
	}
	result.Path = path

	read, written, skipped := step.Counts()
	logger.Info("jobs.export.completed", "read", read, "written", written, "skipped", skipped, "warnings", len(step.Warnings()), "path", path)
	meta := map[string]any{
		"job_code": job.JobCode,
		"read":     read,
		"written":  written,
		"skipped":  skipped,
		"path":     path,
	}
	if r.audit != nil {
		_ = r.audit.Record(ctx, AuditEvent{
			EntityType: "job_execution",
			EntityID:   job.ID.String(),
			Action:     "quick_export",
			ActorID:    job.User,
			OccurredAt: finished,
			Metadata:   meta,
		})
	}
	if r.activity.Enabled() {
		_ = r.activity.Emit(ctx, activity.Event{
			Verb:       "quick_export",
			ObjectType: "job_execution",
			ObjectID:   job.ID.String(),
			Metadata:   meta,
		})
	}
	return result, nil
}

func (r *ExportRunner) run(ctx context.Context, req QuickExportRequest, step *batch.StepExecution, logger interfaces.Logger) (string, error) {
	if req.WorkingDirectory == "" {
		return "", errors.New("jobs: export working directory is required")
	}
	writer, err := export.NewRowWriter(req.Format, req.WorkingDirectory, exportFileName(step.JobExecution, r.now()))
	if err != nil {
		return "", err
	}
	entities, err := r.load(ctx, req, step)
	if err != nil {
		return "", err
	}

	tracked := catalogrepo.NewIdentityMap()
	deps := r.deps
	if deps.Detacher == nil {
		deps.Detacher = tracked
	}
	processor := export.NewProcessor(deps, step, security.NewTokenStorage(), export.WithProcessorLogger(logger))

	for _, entity := range entities {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		entity = tracked.Track(entity)
		step.IncrementReadCount()
		row, err := processor.Process(ctx, entity)
		if err != nil {
			if errors.Is(err, export.ErrInvalidItem) {
				tracked.Detach(entity)
				step.IncrementSkipCount()
				step.AddWarning(err.Error(), nil, entity.IdentifierValue())
				logger.Warn("jobs.export.item_skipped", "item", entity.IdentifierValue(), "error", err)
				continue
			}
			return "", err
		}
		if err := writer.Write([]*export.Row{row}); err != nil {
			return "", err
		}
		step.IncrementWriteCount(1)
	}
	return writer.Flush()
}

func (r *ExportRunner) load(ctx context.Context, req QuickExportRequest, step *batch.StepExecution) ([]catalog.EntityWithValues, error) {
	everything := len(req.ProductIdentifiers) == 0 && len(req.ProductModelCodes) == 0
	var entities []catalog.EntityWithValues

	if r.products != nil && (everything || len(req.ProductIdentifiers) > 0) {
		var products []*catalog.Product
		var err error
		if everything {
			products, err = r.products.List(ctx)
		} else {
			products, err = r.products.ListByIdentifiers(ctx, req.ProductIdentifiers)
		}
		if err != nil {
			return nil, fmt.Errorf("jobs: load products: %w", err)
		}
		for _, product := range products {
			entities = append(entities, product)
		}
		step.IncrementSummaryInfo("read_products", len(products))
	}

	if r.models != nil && (everything || len(req.ProductModelCodes) > 0) {
		var models []*catalog.ProductModel
		var err error
		if everything {
			models, err = r.models.List(ctx)
		} else {
			models, err = r.models.ListByCodes(ctx, req.ProductModelCodes)
		}
		if err != nil {
			return nil, fmt.Errorf("jobs: load product models: %w", err)
		}
		for _, model := range models {
			entities = append(entities, model)
		}
		step.IncrementSummaryInfo("read_product_models", len(models))
	}
	return entities, nil
}

func exportFileName(job *batch.JobExecution, now time.Time) string {
	return fmt.Sprintf("%s_%s", job.JobCode, now.UTC().Format("2006-01-02_15-04-05"))
}
