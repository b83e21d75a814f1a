package bundle

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundle.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestExtractZipPreservesLayout(t *testing.T) {
	archive := buildZip(t, map[string]string{
		"content.html":      "<p>hello</p>",
		"meta.json":         `{"slug": "hello"}`,
		"images/pic.png":    "pngbytes",
		"images/sub/b.jpeg": "jpegbytes",
	})

	dest := t.TempDir()
	require.NoError(t, ExtractZip(archive, dest))

	data, err := os.ReadFile(filepath.Join(dest, "content.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>hello</p>", string(data))

	_, err = os.Stat(filepath.Join(dest, "images", "sub", "b.jpeg"))
	assert.NoError(t, err)
}

func TestExtractZipSkipsEscapingEntries(t *testing.T) {
	archive := buildZip(t, map[string]string{
		"ok.html":         "<p>fine</p>",
		"../escaped.html": "<p>outside</p>",
	})

	dest := filepath.Join(t.TempDir(), "inner")
	require.NoError(t, os.MkdirAll(dest, 0o755))
	require.NoError(t, ExtractZip(archive, dest))

	_, err := os.Stat(filepath.Join(dest, "ok.html"))
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(filepath.Dir(dest), "escaped.html"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtractZipNotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-zip.zip")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	err := ExtractZip(path, t.TempDir())
	require.ErrorIs(t, err, ErrExtractionFailed)
}
