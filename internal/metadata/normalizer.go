// Package metadata parses the near-JSON sidecar files found in content
// bundles. Producers emit metadata through copy-paste pipelines that wrap it
// in code fences, add comments and trailing commas, or re-encode it, so a
// plain json.Unmarshal is only the first attempt in a repair chain.
package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrInvalid marks metadata that could not be parsed into a record with the
// required fields after the full repair chain.
var ErrInvalid = errors.New("invalid bundle metadata")

// snippetLimit bounds how much of the failing payload is echoed in errors.
const snippetLimit = 200

// Record is the validated metadata of a bundle. Title and Slug are required;
// everything else is optional and read permissively.
type Record struct {
	Title         string
	Slug          string
	Tags          []string
	Description   string
	FocusKeywords []string
}

// A stage transforms the payload before a decode attempt. Stages are applied
// cumulatively: each one receives the previous stage's output.
type stage struct {
	name      string
	transform func([]byte) []byte
}

var stages = []stage{
	{"raw", func(raw []byte) []byte { return raw }},
	{"sanitized", Sanitize},
	{"brace-extracted", extractObject},
}

// Parse runs the repair chain until one stage yields a mapping with the
// required fields. The error of the last failing stage is preserved together
// with a short prefix of the attempted text.
func Parse(raw []byte) (*Record, error) {
	text := raw
	var lastErr error
	for _, st := range stages {
		text = st.transform(text)
		rec, err := decode(text)
		if err == nil {
			return rec, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v. Snippet: %s", ErrInvalid, lastErr, snippet(text))
}

// ParseFile reads and parses a metadata file, annotating errors with the
// file's basename.
func ParseFile(path string) (*Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: could not read %s: %v", ErrInvalid, filepath.Base(path), err)
	}
	rec, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return rec, nil
}

func decode(text []byte) (*Record, error) {
	var payload map[string]any
	if err := json.Unmarshal(text, &payload); err != nil {
		return nil, err
	}

	title, ok := payload["metaTitle"].(string)
	if !ok {
		return nil, errors.New("required field metaTitle is missing or not a string")
	}
	slug, ok := payload["slug"].(string)
	if !ok {
		return nil, errors.New("required field slug is missing or not a string")
	}

	rec := &Record{
		Title:         title,
		Slug:          slug,
		Tags:          stringList(payload["tags"]),
		FocusKeywords: stringList(payload["focusKeywords"]),
	}
	if desc, ok := payload["metaDescription"].(string); ok {
		rec.Description = desc
	}
	return rec, nil
}

// stringList reads an optional field that may be a list of strings or a
// single string. Anything else is treated as not set.
func stringList(v any) []string {
	switch value := v.(type) {
	case string:
		return []string{value}
	case []any:
		var out []string
		for _, item := range value {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func snippet(text []byte) string {
	if len(text) > snippetLimit {
		text = text[:snippetLimit]
	}
	return string(text)
}
