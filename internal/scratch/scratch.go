// Package scratch manages the temporary directories bundles are extracted
// into. Every import gets its own directory and must release it on every
// exit path; the sweeper catches directories orphaned by crashes.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const dirPrefix = "bundle-"

type Store struct {
	root string
}

func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scratch root: %w", err)
	}
	return &Store{root: root}, nil
}

func (s *Store) Root() string {
	return s.root
}

// CreateDir makes a fresh scratch directory with a unique name, so that
// concurrent imports never share paths.
func (s *Store) CreateDir() (string, error) {
	dir := filepath.Join(s.root, dirPrefix+uuid.NewString())
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create scratch dir: %w", err)
	}
	return dir, nil
}

// Release recursively deletes a scratch directory. Paths outside the scratch
// root are refused.
func (s *Store) Release(path string) error {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to release %s: outside scratch root", path)
	}
	return os.RemoveAll(path)
}

// Sweep removes scratch directories older than maxAge and returns how many
// were deleted.
func (s *Store) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return 0, fmt.Errorf("failed to list scratch root: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), dirPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.RemoveAll(filepath.Join(s.root, entry.Name())); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
