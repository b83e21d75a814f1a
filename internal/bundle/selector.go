package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gurkhatech/bundlepress/internal/metadata"
)

var preferredHTMLNames = map[string]bool{
	"content.html": true,
	"index.html":   true,
	"content.htm":  true,
	"index.htm":    true,
}

// SelectContent picks the bundle's HTML content file: a conventionally named
// file wins outright, otherwise the largest candidate. Ties on size keep the
// first candidate in scan order.
func SelectContent(set *CandidateSet) (string, error) {
	if len(set.HTML) == 0 {
		return "", fmt.Errorf("%w (%s)", ErrNoHTMLCandidate, set.Summary())
	}

	for _, path := range set.HTML {
		if preferredHTMLNames[strings.ToLower(filepath.Base(path))] {
			return path, nil
		}
	}

	best := set.HTML[0]
	bestSize := fileSize(best)
	for _, path := range set.HTML[1:] {
		if size := fileSize(path); size > bestSize {
			best = path
			bestSize = size
		}
	}
	return best, nil
}

// SelectMeta picks the bundle's JSON metadata file: the first candidate in
// scan order that parses (raw or repaired) to a record with the required
// fields. When none qualifies the first candidate is returned anyway so that
// the normalization stage can produce a specific error about it.
func SelectMeta(set *CandidateSet) (string, error) {
	if len(set.JSON) == 0 {
		return "", fmt.Errorf("%w (%s)", ErrNoJSONCandidate, set.Summary())
	}

	for _, path := range set.JSON {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if _, err := metadata.Parse(raw); err == nil {
			return path, nil
		}
	}

	return set.JSON[0], nil
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
