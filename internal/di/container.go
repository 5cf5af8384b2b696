package di

import (
	"context"
	"time"

	"github.com/goliatone/go-pim/internal/catalog"
	completenesscmd "github.com/goliatone/go-pim/internal/commands/completeness"
	exportcmd "github.com/goliatone/go-pim/internal/commands/export"
	"github.com/goliatone/go-pim/internal/completeness"
	"github.com/goliatone/go-pim/internal/export"
	"github.com/goliatone/go-pim/internal/jobs"
	"github.com/goliatone/go-pim/internal/logging"
	"github.com/goliatone/go-pim/internal/media"
	"github.com/goliatone/go-pim/internal/runtimeconfig"
	"github.com/goliatone/go-pim/internal/security"
	"github.com/goliatone/go-pim/pkg/activity"
	"github.com/goliatone/go-pim/pkg/activity/usersink"
	"github.com/goliatone/go-pim/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// Container wires the catalog stores, the jobs and their command handlers.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider

	bunDB         *bun.DB
	ownsDB        bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	repos      catalog.Repositories
	reposSet   bool
	catalogSvc catalog.Service

	storages     *media.Storages
	users        security.UserProvider
	activitySink interfaces.ActivitySink
	audit        jobs.AuditRecorder
	calculator   completeness.Calculator
	now          func() time.Time

	worker       *jobs.Worker
	exportRunner *jobs.ExportRunner

	recomputeHandler   *completenesscmd.RecomputeCompletenessHandler
	quickExportHandler *exportcmd.QuickExportHandler
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB uses db instead of opening the configured database.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the cache service decorating bun repositories.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithRepositories replaces every catalog store.
func WithRepositories(repos catalog.Repositories) Option {
	return func(c *Container) {
		c.repos = repos
		c.reposSet = true
	}
}

func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithUserProvider sets the users quick exports authenticate against.
func WithUserProvider(users security.UserProvider) Option {
	return func(c *Container) {
		c.users = users
	}
}

// WithActivitySink forwards job activity to a go-users sink. It enables the
// activity feature.
func WithActivitySink(sink interfaces.ActivitySink) Option {
	return func(c *Container) {
		c.activitySink = sink
		c.Config.Features.Activity = sink != nil
	}
}

// WithAuditRecorder overrides the in-memory audit log.
func WithAuditRecorder(recorder jobs.AuditRecorder) Option {
	return func(c *Container) {
		c.audit = recorder
	}
}

// WithMediaStorage registers a media storage next to the configured ones.
func WithMediaStorage(alias string, storage media.FileStorage) Option {
	return func(c *Container) {
		c.storages.Register(alias, storage)
	}
}

func WithCompletenessCalculator(calculator completeness.Calculator) Option {
	return func(c *Container) {
		c.calculator = calculator
	}
}

func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		if clock != nil {
			c.now = clock
		}
	}
}

// NewContainer validates cfg and wires every dependency.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:   cfg,
		storages: media.NewStorages(),
		now:      time.Now,
	}
	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureDatabase(context.Background()); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	if err := c.configureMediaStorages(context.Background()); err != nil {
		c.Close()
		return nil, err
	}
	c.configureJobs()
	c.configureCommands()

	c.logger("pim").Debug("container.configured",
		"storage", c.Config.Storage.Driver,
		"cache", c.cacheService != nil,
		"activity", c.Config.Features.Activity,
	)
	return c, nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled || c.bunDB == nil {
		return
	}
	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.TTL > 0 {
			cfg.TTL = c.Config.Cache.TTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}
	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	switch {
	case c.reposSet:
	case c.bunDB != nil:
		c.repos = catalog.NewBunRepositories(c.bunDB, c.cacheService, c.keySerializer)
	default:
		c.repos = catalog.NewMemoryRepositories()
	}
	c.catalogSvc = catalog.NewService(c.repos, catalog.WithLogger(logging.CatalogLogger(c.loggerProvider)))
}

func (c *Container) configureJobs() {
	if c.calculator == nil {
		c.calculator = completeness.NewCalculator(nil, nil)
	}
	if c.audit == nil && c.Config.Features.Audit {
		c.audit = jobs.NewInMemoryAuditRecorder()
	}
	if c.users == nil {
		c.users = security.NewMemoryUserProvider()
	}

	var emitter *activity.Emitter
	if c.activitySink != nil {
		emitter = activity.NewEmitter(activity.Hooks{usersink.Hook{Sink: c.activitySink}}, activity.Config{
			Enabled: c.Config.Features.Activity,
			Channel: "pim",
		})
	}

	c.worker = jobs.NewWorker(c.repos.Products, c.calculator, c.repos.Completeness,
		jobs.WithAuditRecorder(c.audit),
		jobs.WithActivityEmitter(emitter),
		jobs.WithClock(c.now),
		jobs.WithWorkers(c.Config.Completeness.Workers),
		jobs.WithBatchSize(c.Config.Completeness.BatchSize),
		jobs.WithLogger(logging.JobsLogger(c.loggerProvider)),
	)

	deps := export.Dependencies{
		Channels:   c.repos.Channels,
		Attributes: c.repos.Attributes,
		Normalizer: export.NewStandardNormalizer(c.repos.Attributes),
		Filler:     export.NewFamilyValuesFiller(),
		Users:      c.users,
		Media: media.NewBulkMediaFetcher(c.repos.Attributes, c.repos.FileInfos, c.storages,
			media.WithFetcherLogger(logging.MediaLogger(c.loggerProvider))),
	}
	c.exportRunner = jobs.NewExportRunner(c.repos.Products, c.repos.ProductModels, deps,
		jobs.WithExportAuditRecorder(c.audit),
		jobs.WithExportActivityEmitter(emitter),
		jobs.WithExportClock(c.now),
		jobs.WithExportLogger(logging.ExportLogger(c.loggerProvider)),
	)
}

func (c *Container) configureCommands() {
	c.recomputeHandler = completenesscmd.NewRecomputeCompletenessHandler(c.worker, c.CommandLogger("completeness"))
	c.quickExportHandler = exportcmd.NewQuickExportHandler(c.exportRunner, c.CommandLogger("export"))
}

// Close releases the database opened by the container.
func (c *Container) Close() error {
	if c.bunDB == nil || !c.ownsDB {
		return nil
	}
	c.ownsDB = false
	return c.bunDB.Close()
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

func (c *Container) BunDB() *bun.DB { return c.bunDB }

func (c *Container) Repositories() catalog.Repositories { return c.repos }

func (c *Container) CatalogService() catalog.Service { return c.catalogSvc }

func (c *Container) MediaStorages() *media.Storages { return c.storages }

func (c *Container) UserProvider() security.UserProvider { return c.users }

// AuditRecorder returns nil when the audit feature is disabled.
func (c *Container) AuditRecorder() jobs.AuditRecorder { return c.audit }

func (c *Container) CompletenessWorker() *jobs.Worker { return c.worker }

func (c *Container) ExportRunner() *jobs.ExportRunner { return c.exportRunner }

func (c *Container) RecomputeCompletenessHandler() *completenesscmd.RecomputeCompletenessHandler {
	return c.recomputeHandler
}

func (c *Container) QuickExportHandler() *exportcmd.QuickExportHandler {
	return c.quickExportHandler
}
