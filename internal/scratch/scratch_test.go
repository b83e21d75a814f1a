package scratch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDirMakesUniqueDirs(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	a, err := store.CreateDir()
	require.NoError(t, err)
	b, err := store.CreateDir()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	for _, dir := range []string{a, b} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestReleaseRemovesDir(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	dir, err := store.CreateDir()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f.txt"), []byte("x"), 0o644))

	require.NoError(t, store.Release(dir))
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestReleaseRefusesOutsideRoot(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	outside := t.TempDir()
	assert.Error(t, store.Release(outside))
	assert.Error(t, store.Release(store.Root()))

	// The refused path is untouched
	_, statErr := os.Stat(outside)
	assert.NoError(t, statErr)
}

func TestSweepRemovesOnlyOldPrefixedDirs(t *testing.T) {
	root := t.TempDir()
	store, err := NewStore(root)
	require.NoError(t, err)

	old, err := store.CreateDir()
	require.NoError(t, err)
	fresh, err := store.CreateDir()
	require.NoError(t, err)

	// Unrelated directory in the same root must not be swept
	other := filepath.Join(root, "keep-me")
	require.NoError(t, os.Mkdir(other, 0o755))

	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))
	require.NoError(t, os.Chtimes(other, past, past))

	removed, err := store.Sweep(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
	_, err = os.Stat(other)
	assert.NoError(t, err)
}
