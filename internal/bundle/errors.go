package bundle

import "errors"

// Fatal bundle-level failures. Each aborts the import of the bundle that
// produced it; batch processing converts them into per-bundle results.
var (
	ErrExtractionFailed = errors.New("could not extract zip archive")
	ErrNoHTMLCandidate  = errors.New("no HTML content file found in bundle")
	ErrNoJSONCandidate  = errors.New("no JSON metadata file found in bundle")
)
