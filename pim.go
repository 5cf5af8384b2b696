package pim

import (
	"context"
	"io"

	"github.com/goliatone/go-pim/internal/catalog"
	completenesscmd "github.com/goliatone/go-pim/internal/commands/completeness"
	exportcmd "github.com/goliatone/go-pim/internal/commands/export"
	"github.com/goliatone/go-pim/internal/di"
	"github.com/goliatone/go-pim/internal/jobs"
	"github.com/goliatone/go-pim/internal/security"
	"github.com/goliatone/go-command/dispatcher"
)

// CatalogService exports the catalog write service.
type CatalogService = catalog.Service

// Repositories exports the catalog stores.
type Repositories = catalog.Repositories

// ImportSummary counts the entities saved by an import.
type ImportSummary = catalog.ImportSummary

// RecomputeCompletenessCommand requests a completeness recompute.
type RecomputeCompletenessCommand = completenesscmd.RecomputeCompletenessCommand

// QuickExportCommand requests a quick export.
type QuickExportCommand = exportcmd.QuickExportCommand

// QuickExportResult reports the executed export step.
type QuickExportResult = jobs.QuickExportResult

// RecomputeSummary aggregates a recompute run.
type RecomputeSummary = jobs.RecomputeSummary

// User is an account allowed to run quick exports.
type User = security.User

// Module is the top level façade over the catalog, its jobs and commands.
type Module struct {
	container     *di.Container
	subscriptions []subscription
}

type subscription interface {
	Unsubscribe()
}

// New constructs a module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Catalog returns the catalog write service.
func (m *Module) Catalog() CatalogService {
	return m.container.CatalogService()
}

// Repositories returns the catalog stores.
func (m *Module) Repositories() Repositories {
	return m.container.Repositories()
}

// Import decodes a YAML catalog document from r and saves it.
func (m *Module) Import(ctx context.Context, r io.Reader) (ImportSummary, error) {
	doc, err := catalog.DecodeDocument(r)
	if err != nil {
		return ImportSummary{}, err
	}
	return catalog.Import(ctx, m.container.CatalogService(), doc)
}

// RecomputeCompleteness runs the recompute command handler.
func (m *Module) RecomputeCompleteness(ctx context.Context, msg RecomputeCompletenessCommand) error {
	return m.container.RecomputeCompletenessHandler().Execute(ctx, msg)
}

// QuickExport runs the quick export command and returns the executed step.
// A failed step is returned together with its error.
func (m *Module) QuickExport(ctx context.Context, msg QuickExportCommand) (*QuickExportResult, error) {
	var result *QuickExportResult
	handler := exportcmd.NewQuickExportHandler(m.container.ExportRunner(), m.container.CommandLogger("export"),
		exportcmd.WithResult(func(r *QuickExportResult) { result = r }),
	)
	err := handler.Execute(ctx, msg)
	return result, err
}

// RegisterCommands subscribes the command handlers on the go-command
// dispatcher so messages can be sent with dispatcher.Dispatch. Calling it
// twice is a no-op.
func (m *Module) RegisterCommands() {
	if len(m.subscriptions) > 0 {
		return
	}
	m.subscriptions = append(m.subscriptions,
		dispatcher.SubscribeCommand[RecomputeCompletenessCommand](m.container.RecomputeCompletenessHandler()),
		dispatcher.SubscribeCommand[QuickExportCommand](m.container.QuickExportHandler()),
	)
}

// Close removes dispatcher subscriptions and releases the database.
func (m *Module) Close() error {
	for _, sub := range m.subscriptions {
		sub.Unsubscribe()
	}
	m.subscriptions = nil
	return m.container.Close()
}
