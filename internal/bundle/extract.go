package bundle

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// ExtractZip unpacks the archive into destDir, preserving the internal
// directory layout. Entries whose names would escape destDir are skipped;
// bundle producers are not trusted to emit sanitized paths.
func ExtractZip(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	defer reader.Close()

	for _, entry := range reader.File {
		target, ok := safeJoin(destDir, entry.Name)
		if !ok {
			log.Printf("Skipping archive entry with unsafe path: %s", entry.Name)
			continue
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
			}
			continue
		}

		if err := extractFile(entry, target); err != nil {
			return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
		}
	}

	return nil
}

func extractFile(entry *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

// safeJoin resolves an archive entry name under root and reports whether the
// result stays inside root.
func safeJoin(root, name string) (string, bool) {
	if filepath.IsAbs(name) {
		return "", false
	}
	target := filepath.Join(root, filepath.FromSlash(name))
	cleanRoot := filepath.Clean(root)
	if target != cleanRoot && !strings.HasPrefix(target, cleanRoot+string(os.PathSeparator)) {
		return "", false
	}
	return target, true
}
