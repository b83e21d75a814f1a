package http

import (
	"github.com/gurkhatech/bundlepress/internal/database"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces the long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Importer  BundleImporter
	PostStore PostStore
	Database  *database.Database

	// Upload limits
	MaxUploadSize int64

	// Media serving
	MediaBaseURL string
	MediaBaseDir string

	// Application info
	Version string
}
