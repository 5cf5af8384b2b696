package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrStorageDriverUnknown   = errors.New("pim config: storage driver is invalid")
	ErrStorageDSNRequired     = errors.New("pim config: storage dsn is required for postgres")
	ErrCacheTTLInvalid        = errors.New("pim config: cache ttl must be positive when cache is enabled")
	ErrWorkersInvalid         = errors.New("pim config: completeness workers must be zero or positive")
	ErrBatchSizeInvalid       = errors.New("pim config: completeness batch size must be zero or positive")
	ErrExportFormatInvalid    = errors.New("pim config: export format is invalid")
	ErrMediaStorageInvalid    = errors.New("pim config: media storage is invalid")
	ErrLoggingProviderUnknown = errors.New("pim config: logging provider is invalid")
	ErrLoggingLevelInvalid    = errors.New("pim config: logging level is invalid")
	ErrLoggingFormatInvalid   = errors.New("pim config: logging format is invalid")
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"

	MediaStorageLocal = "local"
	MediaStorageS3    = "s3"
)

// Config aggregates the settings of the catalog module and its jobs.
type Config struct {
	Storage      StorageConfig      `yaml:"storage"`
	Cache        CacheConfig        `yaml:"cache"`
	Completeness CompletenessConfig `yaml:"completeness"`
	Export       ExportConfig       `yaml:"export"`
	Logging      LoggingConfig      `yaml:"logging"`
	Features     Features           `yaml:"features"`
}

// StorageConfig selects the catalog store.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	// CreateSchema creates the catalog tables when the container opens the database.
	CreateSchema bool `yaml:"create_schema"`
}

// CacheConfig controls the go-repository-cache decorator around bun repositories.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// CompletenessConfig bounds the recompute worker.
type CompletenessConfig struct {
	Workers   int `yaml:"workers"`
	BatchSize int `yaml:"batch_size"`
}

// ExportConfig captures quick export defaults and the media storages files
// are copied from.
type ExportConfig struct {
	WorkingDirectory string               `yaml:"working_directory"`
	Format           string               `yaml:"format"`
	Storages         []MediaStorageConfig `yaml:"storages"`
}

// MediaStorageConfig registers one media storage under Alias. Local storages
// read from Root; S3 storages from Bucket.
type MediaStorageConfig struct {
	Alias    string `yaml:"alias"`
	Kind     string `yaml:"kind"`
	Root     string `yaml:"root"`
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	Prefix   string `yaml:"prefix"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// Features toggles optional behaviour.
type Features struct {
	Logger   bool `yaml:"logger"`
	Activity bool `yaml:"activity"`
	Audit    bool `yaml:"audit"`
}

// DefaultConfig returns an in-memory catalog with console logging.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Driver: StorageDriverMemory,
		},
		Cache: CacheConfig{
			TTL: time.Minute,
		},
		Completeness: CompletenessConfig{
			Workers:   4,
			BatchSize: 100,
		},
		Export: ExportConfig{
			WorkingDirectory: "var/export",
			Format:           "csv",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Features: Features{
			Logger: true,
			Audit:  true,
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	switch normalize(cfg.Storage.Driver) {
	case StorageDriverMemory, StorageDriverSQLite:
	case StorageDriverPostgres:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	if cfg.Cache.Enabled && cfg.Cache.TTL <= 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Completeness.Workers < 0 {
		return ErrWorkersInvalid
	}
	if cfg.Completeness.BatchSize < 0 {
		return ErrBatchSizeInvalid
	}
	switch normalize(cfg.Export.Format) {
	case "", "csv", "json", "jsonl":
	default:
		return fmt.Errorf("%w: %s", ErrExportFormatInvalid, cfg.Export.Format)
	}
	aliases := map[string]bool{}
	for _, storage := range cfg.Export.Storages {
		if err := storage.validate(); err != nil {
			return err
		}
		if aliases[storage.Alias] {
			return fmt.Errorf("%w: duplicate alias %s", ErrMediaStorageInvalid, storage.Alias)
		}
		aliases[storage.Alias] = true
	}
	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, cfg.Logging.Provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func (s MediaStorageConfig) validate() error {
	if strings.TrimSpace(s.Alias) == "" {
		return fmt.Errorf("%w: alias is required", ErrMediaStorageInvalid)
	}
	switch normalize(s.Kind) {
	case MediaStorageLocal:
		if strings.TrimSpace(s.Root) == "" {
			return fmt.Errorf("%w: %s needs a root directory", ErrMediaStorageInvalid, s.Alias)
		}
	case MediaStorageS3:
		if strings.TrimSpace(s.Bucket) == "" {
			return fmt.Errorf("%w: %s needs a bucket", ErrMediaStorageInvalid, s.Alias)
		}
	default:
		return fmt.Errorf("%w: %s has unknown kind %q", ErrMediaStorageInvalid, s.Alias, s.Kind)
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
