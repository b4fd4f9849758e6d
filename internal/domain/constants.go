package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// FilePermissions is the permission for list and cache files (rw-r--r--)
	FilePermissions = 0o644
	// SecureFilePermissions is the permission for the config file (rw-------)
	SecureFilePermissions = 0o600
)

// Default file locations, relative to the user's home directory.
const (
	AppDirName                 = ".infernav"
	DefaultConfigFileName      = "config.yaml"
	DefaultServersFileName     = "srv_list.txt"
	DefaultValidationCacheName = "validation_cache.csv"
	DefaultMetadataFileName    = "server_metadata.json"
)

// Timeout constants
const (
	// DefaultProbeTimeout bounds a single health probe
	DefaultProbeTimeout = 5 * time.Second
	// DefaultCatalogTimeout bounds a model catalog fetch
	DefaultCatalogTimeout = 30 * time.Second
	// DefaultGenerationTimeout of zero means generation streams are not time boxed
	DefaultGenerationTimeout = time.Duration(0)
)

// Endpoint paths
const (
	ModelsPath   = "/v1/models"
	GeneratePath = "/api/generate"
)

// DefaultLogLevel keeps diagnostics quiet unless asked for.
const DefaultLogLevel = "warn"

// Time formats
const (
	// TimestampFormat is used for validation cache rows
	TimestampFormat = time.RFC3339Nano
	// DisplayTimeFormat is used when printing timestamps to the operator
	DisplayTimeFormat = "2006-01-02 15:04:05"
)
