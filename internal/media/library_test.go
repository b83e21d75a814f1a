package media

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurkhatech/bundlepress/internal/entities"
)

// fakeStore keeps attachments in a slice, IDs are 1-based indexes.
type fakeStore struct {
	attachments []*entities.Attachment
}

func (f *fakeStore) CreateAttachment(att *entities.Attachment) error {
	f.attachments = append(f.attachments, att)
	att.ID = uint(len(f.attachments))
	return nil
}

func (f *fakeStore) GetAttachmentByID(id uint) (*entities.Attachment, error) {
	return f.attachments[id-1], nil
}

func (f *fakeStore) UpdateAttachment(att *entities.Attachment) error {
	f.attachments[att.ID-1] = att
	return nil
}

func newTestLibrary(t *testing.T) (*Library, *fakeStore) {
	t.Helper()
	store := &fakeStore{}
	lib, err := NewLibrary(t.TempDir(), "/media/", store)
	require.NoError(t, err)
	lib.now = func() time.Time {
		return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	}
	return lib, store
}

func TestUploadUsesDatedLayout(t *testing.T) {
	lib, _ := newTestLibrary(t)

	uploaded, err := lib.Upload("pic.png", []byte("bytes"))
	require.NoError(t, err)

	assert.Equal(t, "/media/2026/08/pic.png", uploaded.URL)
	data, err := os.ReadFile(uploaded.StoragePath)
	require.NoError(t, err)
	assert.Equal(t, "bytes", string(data))
}

func TestUploadAvoidsNameCollisions(t *testing.T) {
	lib, _ := newTestLibrary(t)

	first, err := lib.Upload("pic.png", []byte("one"))
	require.NoError(t, err)
	second, err := lib.Upload("pic.png", []byte("two"))
	require.NoError(t, err)

	assert.Equal(t, "/media/2026/08/pic.png", first.URL)
	assert.Equal(t, "/media/2026/08/pic-1.png", second.URL)

	data, err := os.ReadFile(first.StoragePath)
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
}

func TestRegisterAttachmentSniffsMimeType(t *testing.T) {
	lib, store := newTestLibrary(t)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 2))))
	uploaded, err := lib.Upload("tiny.png", buf.Bytes())
	require.NoError(t, err)

	id, err := lib.RegisterAttachment(uploaded.StoragePath, "tiny")
	require.NoError(t, err)
	require.Equal(t, uint(1), id)

	att := store.attachments[0]
	assert.Equal(t, "tiny.png", att.FileName)
	assert.Equal(t, "image/png", att.MimeType)
	assert.Equal(t, "/media/2026/08/tiny.png", att.URL)
	assert.Equal(t, "tiny", att.Title)
}

func TestGenerateMetadataFillsDimensions(t *testing.T) {
	lib, store := newTestLibrary(t)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 32, 16))))
	uploaded, err := lib.Upload("dims.png", buf.Bytes())
	require.NoError(t, err)
	id, err := lib.RegisterAttachment(uploaded.StoragePath, "dims")
	require.NoError(t, err)

	require.NoError(t, lib.GenerateMetadata(id))

	att := store.attachments[0]
	assert.Equal(t, 32, att.Width)
	assert.Equal(t, 16, att.Height)
}

func TestGenerateMetadataUndecodableFormat(t *testing.T) {
	lib, _ := newTestLibrary(t)

	path := filepath.Join(t.TempDir(), "vector.svg")
	require.NoError(t, os.WriteFile(path, []byte("<svg></svg>"), 0o644))
	id, err := lib.RegisterAttachment(path, "vector")
	require.NoError(t, err)

	assert.Error(t, lib.GenerateMetadata(id))
}
