// Package constants provides shared constants used throughout the coastermap codebase.
// This includes file layout, id scheme defaults, batch timings, and permissions.
package constants

import "time"

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Catalog file layout
const (
	// DefaultStorePath is the master record store keyed by local id
	DefaultStorePath = "database/data/coasters_master.json"

	// DefaultCrossReferencePath maps external ids to local ids
	DefaultCrossReferencePath = "database/data/rcdb_to_custom_mapping.json"

	// BackupDirName is created next to the store when no backup dir is configured
	BackupDirName = "backups"

	// BackupTimestampFormat is appended to backup file names (YYYYmmdd_HHMMSS)
	BackupTimestampFormat = "20060102_150405"

	// DefaultProgressPath is where the batch runner checkpoints its position
	DefaultProgressPath = "update_progress.json"
)

// Local id scheme
const (
	// DefaultIDPrefix is the fixed-length prefix of engine-assigned local ids
	DefaultIDPrefix = "C999"

	// DefaultIDWidth is the zero-padded width of the numeric suffix
	DefaultIDWidth = 6
)

// Batch orchestration
const (
	// DefaultSaveInterval is the number of external ids fetched between checkpoints
	DefaultSaveInterval = 500

	// DefaultFetchDelay is the pause between two fetches
	DefaultFetchDelay = 2 * time.Second

	// MaxRetries is the maximum number of attempts for a failed fetch
	MaxRetries = 3

	// RetryBackoff is the base backoff duration for retries
	RetryBackoff = 1 * time.Second

	// MaxRetryBackoff is the maximum backoff duration for retries
	MaxRetryBackoff = 30 * time.Second
)
