package pim

import "github.com/goliatone/go-pim/internal/runtimeconfig"

var (
	ErrStorageDriverUnknown   = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired     = runtimeconfig.ErrStorageDSNRequired
	ErrCacheTTLInvalid        = runtimeconfig.ErrCacheTTLInvalid
	ErrWorkersInvalid         = runtimeconfig.ErrWorkersInvalid
	ErrBatchSizeInvalid       = runtimeconfig.ErrBatchSizeInvalid
	ErrExportFormatInvalid    = runtimeconfig.ErrExportFormatInvalid
	ErrMediaStorageInvalid    = runtimeconfig.ErrMediaStorageInvalid
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config             = runtimeconfig.Config
	StorageConfig      = runtimeconfig.StorageConfig
	CacheConfig        = runtimeconfig.CacheConfig
	CompletenessConfig = runtimeconfig.CompletenessConfig
	ExportConfig       = runtimeconfig.ExportConfig
	MediaStorageConfig = runtimeconfig.MediaStorageConfig
	LoggingConfig      = runtimeconfig.LoggingConfig
	Features           = runtimeconfig.Features
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
