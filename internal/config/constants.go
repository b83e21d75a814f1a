package config

// Default paths for local data
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./bundlepress.db"

	// DefaultMediaDir is the default root directory for the media library
	DefaultMediaDir = "./media"

	// DefaultScratchDir is the default root for per-import scratch directories
	DefaultScratchDir = "./scratch"
)
