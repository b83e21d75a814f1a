package bundle

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

var imageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
	"svg":  true,
}

// featuredImageToken marks image files that qualify as a post's cover image.
const featuredImageToken = "featured-image"

// CandidateSet holds the files discovered in an extracted bundle, grouped by
// role. Paths are absolute and kept in scan order; scan order is the
// tie-breaker during selection, so it must be stable for a given archive.
type CandidateSet struct {
	HTML           []string
	JSON           []string
	Images         []string
	FeaturedImages []string
}

// Scan walks the extracted bundle tree and classifies every regular file by
// its lower-cased extension. Bundles are not guaranteed to be flat, so the
// walk is fully recursive. filepath.WalkDir visits entries in lexical order,
// which keeps the result deterministic.
func Scan(root string) (*CandidateSet, error) {
	set := &CandidateSet{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		switch {
		case ext == "html" || ext == "htm":
			set.HTML = append(set.HTML, path)
		case ext == "json":
			set.JSON = append(set.JSON, path)
		case imageExtensions[ext]:
			set.Images = append(set.Images, path)
			if strings.Contains(strings.ToLower(d.Name()), featuredImageToken) {
				set.FeaturedImages = append(set.FeaturedImages, path)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return set, nil
}

// Summary lists the discovered candidates by basename, for diagnostics when
// selection fails and the operator needs to see what the bundle contained.
func (c *CandidateSet) Summary() string {
	return "HTML candidates: " + basenames(c.HTML) +
		"; JSON candidates: " + basenames(c.JSON) +
		"; featured image candidates: " + basenames(c.FeaturedImages)
}

func basenames(paths []string) string {
	if len(paths) == 0 {
		return "none"
	}
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
