package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-pim/catalog"
	"github.com/goliatone/go-pim/internal/completeness"
	"github.com/goliatone/go-pim/internal/logging"
	"github.com/goliatone/go-pim/pkg/activity"
	"github.com/goliatone/go-pim/pkg/interfaces"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// JobCodeCompletenessRecompute identifies the recompute job in audit and logs.
const JobCodeCompletenessRecompute = "compute_completeness"

// ProductRepository loads the products to recompute.
type ProductRepository interface {
	List(ctx context.Context) ([]*catalog.Product, error)
	ListByIdentifiers(ctx context.Context, identifiers []string) ([]*catalog.Product, error)
}

// CompletenessStore replaces the stored completeness of one product.
type CompletenessStore interface {
	SaveForProduct(ctx context.Context, productID uuid.UUID, records []*catalog.CompletenessRecord) error
}

// RecomputeRequest selects the products to recompute. An empty identifier
// list with All unset recomputes nothing.
type RecomputeRequest struct {
	ProductIdentifiers []string
	All                bool
	ActorID            string
}

// ProductResult is the outcome of one recomputed product.
type ProductResult struct {
	Identifier string
	Records    []*catalog.CompletenessRecord
}

// RecomputeSummary aggregates a recompute run.
type RecomputeSummary struct {
	Products    []ProductResult
	Records     int
	StartedAt   time.Time
	CompletedAt time.Time
}

// Worker recomputes and stores product completeness with bounded concurrency.
type Worker struct {
	products   ProductRepository
	calculator completeness.Calculator
	store      CompletenessStore
	audit      AuditRecorder
	activity   *activity.Emitter
	logger     interfaces.Logger
	now        func() time.Time
	workers    int
	batchSize  int
}

type Option func(*Worker)

func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(w *Worker) {
		w.audit = recorder
	}
}

func WithActivityEmitter(emitter *activity.Emitter) Option {
	return func(w *Worker) {
		if emitter != nil {
			w.activity = emitter
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(w *Worker) {
		if clock != nil {
			w.now = clock
		}
	}
}

// WithWorkers bounds the number of products calculated concurrently.
func WithWorkers(workers int) Option {
	return func(w *Worker) {
		if workers > 0 {
			w.workers = workers
		}
	}
}

// WithBatchSize sets how many products are loaded and fanned out at once.
func WithBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func NewWorker(products ProductRepository, calculator completeness.Calculator, store CompletenessStore, opts ...Option) *Worker {
	w := &Worker{
		products:   products,
		calculator: calculator,
		store:      store,
		logger:     logging.NoOp(),
		now:        time.Now,
		workers:    4,
		batchSize:  100,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	if w.calculator == nil {
		w.calculator = completeness.NewCalculator(nil, nil)
	}
	return w
}

// Recompute calculates and stores the completeness of the selected products.
// The first failure cancels the remaining work and is returned.
func (w *Worker) Recompute(ctx context.Context, req RecomputeRequest) (*RecomputeSummary, error) {
	if w.products == nil {
		return nil, errors.New("jobs: product repository is nil")
	}
	if w.store == nil {
		return nil, errors.New("jobs: completeness store is nil")
	}
	summary := &RecomputeSummary{StartedAt: w.now()}

	products, err := w.load(ctx, req)
	if err != nil {
		return nil, err
	}
	logger := logging.WithFields(w.logger, map[string]any{
		"job_code": JobCodeCompletenessRecompute,
		"products": len(products),
		"workers":  w.workers,
	})
	logger.Debug("jobs.completeness.started")

	for start := 0; start < len(products); start += w.batchSize {
		end := min(start+w.batchSize, len(products))
		results, err := w.recomputeBatch(ctx, products[start:end], req.ActorID)
		if err != nil {
			logger.Error("jobs.completeness.failed", "error", err)
			return nil, err
		}
		for _, result := range results {
			summary.Products = append(summary.Products, result)
			summary.Records += len(result.Records)
		}
	}

	summary.CompletedAt = w.now()
	logger.Info("jobs.completeness.completed", "records", summary.Records)
	return summary, nil
}

func (w *Worker) load(ctx context.Context, req RecomputeRequest) ([]*catalog.Product, error) {
	switch {
	case req.All:
		return w.products.List(ctx)
	case len(req.ProductIdentifiers) > 0:
		return w.products.ListByIdentifiers(ctx, req.ProductIdentifiers)
	default:
		return nil, nil
	}
}

func (w *Worker) recomputeBatch(ctx context.Context, products []*catalog.Product, actorID string) ([]ProductResult, error) {
	results := make([]ProductResult, len(products))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(w.workers)

	for i, product := range products {
		if product == nil {
			continue
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			records := recordsOf(w.calculator.Calculate(product))
			if err := w.store.SaveForProduct(groupCtx, product.ID, records); err != nil {
				return fmt.Errorf("jobs: save completeness for %q: %w", product.Identifier, err)
			}
			results[i] = ProductResult{Identifier: product.Identifier, Records: records}
			w.recordAudit(groupCtx, actorID, product, records)
			w.emitActivity(groupCtx, actorID, product, records)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	out := results[:0]
	for _, result := range results {
		if result.Identifier != "" {
			out = append(out, result)
		}
	}
	return out, nil
}

func recordsOf(completenesses []*catalog.Completeness) []*catalog.CompletenessRecord {
	records := make([]*catalog.CompletenessRecord, 0, len(completenesses))
	for _, item := range completenesses {
		if record := item.Record(); record != nil {
			records = append(records, record)
		}
	}
	return records
}

func completenessMetadata(records []*catalog.CompletenessRecord) map[string]any {
	ratios := make(map[string]int, len(records))
	for _, record := range records {
		ratios[record.ChannelCode+"/"+record.LocaleCode] = record.Ratio
	}
	return map[string]any{
		"job_code": JobCodeCompletenessRecompute,
		"records":  len(records),
		"ratios":   ratios,
	}
}

func (w *Worker) recordAudit(ctx context.Context, actorID string, product *catalog.Product, records []*catalog.CompletenessRecord) {
	if w.audit == nil {
		return
	}
	_ = w.audit.Record(ctx, AuditEvent{
		EntityType: "product",
		EntityID:   product.Identifier,
		Action:     "recompute_completeness",
		ActorID:    actorID,
		OccurredAt: w.now(),
		Metadata:   completenessMetadata(records),
	})
}

func (w *Worker) emitActivity(ctx context.Context, actorID string, product *catalog.Product, records []*catalog.CompletenessRecord) {
	if !w.activity.Enabled() {
		return
	}
	_ = w.activity.Emit(ctx, activity.Event{
		Verb:       "recompute_completeness",
		ActorID:    actorID,
		ObjectType: "product",
		ObjectID:   product.ID.String(),
		Metadata:   completenessMetadata(records),
	})
}
