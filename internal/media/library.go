// Package media implements the local media library: file storage under a
// dated directory layout plus attachment registration.
package media

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"

	"github.com/gurkhatech/bundlepress/internal/assets"
	"github.com/gurkhatech/bundlepress/internal/entities"
	"github.com/gurkhatech/bundlepress/internal/utils"
)

// AttachmentStore persists attachment records.
type AttachmentStore interface {
	CreateAttachment(att *entities.Attachment) error
	GetAttachmentByID(id uint) (*entities.Attachment, error)
	UpdateAttachment(att *entities.Attachment) error
}

// Library stores uploaded files under baseDir in a YYYY/MM layout and serves
// them at baseURL. It implements assets.Uploader.
type Library struct {
	baseDir string
	baseURL string
	store   AttachmentStore
	now     func() time.Time
}

func NewLibrary(baseDir, baseURL string, store AttachmentStore) (*Library, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &Library{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		store:   store,
		now:     time.Now,
	}, nil
}

// Upload writes the file into the current month's directory. Name collisions
// get a numeric suffix rather than overwriting the existing file.
func (l *Library) Upload(filename string, data []byte) (assets.UploadedFile, error) {
	sub := l.now().Format("2006/01")
	dir := filepath.Join(l.baseDir, filepath.FromSlash(sub))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return assets.UploadedFile{}, fmt.Errorf("failed to create upload dir: %w", err)
	}

	name := uniqueName(dir, utils.SanitizeFilename(filepath.Base(filename)))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return assets.UploadedFile{}, fmt.Errorf("failed to write upload: %w", err)
	}

	return assets.UploadedFile{
		URL:         l.baseURL + "/" + sub + "/" + name,
		StoragePath: path,
	}, nil
}

// RegisterAttachment records an uploaded file as a media attachment and
// returns its ID. The mime type is sniffed from the stored bytes.
func (l *Library) RegisterAttachment(storagePath, title string) (uint, error) {
	var mime string
	if detected, err := mimetype.DetectFile(storagePath); err == nil {
		mime = detected.String()
	}

	att := &entities.Attachment{
		FileName:    filepath.Base(storagePath),
		StoragePath: storagePath,
		URL:         l.urlFor(storagePath),
		MimeType:    mime,
		Title:       title,
	}
	if err := l.store.CreateAttachment(att); err != nil {
		return 0, fmt.Errorf("failed to register attachment: %w", err)
	}
	return att.ID, nil
}

// GenerateMetadata fills in derived metadata (image dimensions) for an
// attachment. Best effort: formats the image package cannot decode (svg,
// webp) report an error and the attachment stays usable without dimensions.
func (l *Library) GenerateMetadata(attachmentID uint) error {
	att, err := l.store.GetAttachmentByID(attachmentID)
	if err != nil {
		return fmt.Errorf("attachment %d: %w", attachmentID, err)
	}

	f, err := os.Open(att.StoragePath)
	if err != nil {
		return fmt.Errorf("attachment %d: %w", attachmentID, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return fmt.Errorf("attachment %d: could not decode %s: %w", attachmentID, att.FileName, err)
	}

	att.Width = cfg.Width
	att.Height = cfg.Height
	return l.store.UpdateAttachment(att)
}

func (l *Library) urlFor(storagePath string) string {
	rel, err := filepath.Rel(l.baseDir, storagePath)
	if err != nil {
		return l.baseURL + "/" + filepath.Base(storagePath)
	}
	return l.baseURL + "/" + filepath.ToSlash(rel)
}

func uniqueName(dir, name string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	candidate := name
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
	}
}
