package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// FilePermissions is the default permission for generated files (rw-r--r--)
	FilePermissions = 0o644
	// ScriptPermissions is the permission for generated helper scripts (rwxr-xr-x)
	ScriptPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout and duration constants
const (
	// DefaultCommandTimeout bounds every external command spawned while rendering
	DefaultCommandTimeout = 2 * time.Second
	// DefaultCacheMaxAge drops cache entries computed longer ago than this
	DefaultCacheMaxAge = 7 * 24 * time.Hour
)

// Limit constants
const (
	// DefaultMaxCacheEntries is the maximum number of cache entries kept in the store
	DefaultMaxCacheEntries = 256
	// DefaultPatchHistoryLimit is the number of patch runs listed by default
	DefaultPatchHistoryLimit = 20
	// MaxProjectRootDepth is how many parent directories project root discovery visits
	MaxProjectRootDepth = 10
)

// Per-fact cache TTLs, in seconds.
const (
	DefaultVersionTTLSeconds = 300
	DefaultVCSTTLSeconds     = 5
	DefaultMarkerTTLSeconds  = 60
)

// Labels and names
const (
	// AppName is used for the state directory and the idle status label
	AppName = "promptline"
	// FallbackDirectoryName is shown when a working directory has no usable last element
	FallbackDirectoryName = "project"
	// DefaultPlaceholderVar is the environment variable that stands in for the project root
	DefaultPlaceholderVar = "CLAUDE_PROJECT_DIR"
)
