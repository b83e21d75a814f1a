// Package assets rewrites local image references in bundle HTML into
// permanent media library URLs.
package assets

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type ImageStatus string

const (
	ImageUploaded     ImageStatus = "uploaded"
	ImageNotFound     ImageStatus = "not_found"
	ImageUploadFailed ImageStatus = "upload_failed"
	ImageAttachFailed ImageStatus = "attach_failed"
)

// ImageOutcome records what happened to one local image reference. Outcomes
// are append-only and consumed by the reporting layer.
type ImageOutcome struct {
	OriginalSrc  string      `json:"original_src"`
	Status       ImageStatus `json:"status"`
	NewURL       string      `json:"new_url,omitempty"`
	AttachmentID uint        `json:"attachment_id,omitempty"`
}

// LogLine formats the outcome for the operator-facing import log.
func (o ImageOutcome) LogLine() string {
	switch o.Status {
	case ImageUploaded:
		return fmt.Sprintf("Image '%s' uploaded successfully.", o.OriginalSrc)
	case ImageNotFound:
		return fmt.Sprintf("Image '%s' not found in the bundle.", o.OriginalSrc)
	case ImageUploadFailed:
		return fmt.Sprintf("Error uploading image '%s'.", o.OriginalSrc)
	case ImageAttachFailed:
		return fmt.Sprintf("Error creating attachment for image '%s'.", o.OriginalSrc)
	default:
		return fmt.Sprintf("Image '%s': %s", o.OriginalSrc, o.Status)
	}
}

// UploadedFile is the uploader's answer for a stored file.
type UploadedFile struct {
	URL         string
	StoragePath string
}

// Uploader accepts file bytes into permanent media storage and registers
// them as attachments.
type Uploader interface {
	Upload(filename string, data []byte) (UploadedFile, error)
	RegisterAttachment(storagePath, title string) (uint, error)
}

type Rewriter struct {
	uploader Uploader
}

func NewRewriter(uploader Uploader) *Rewriter {
	return &Rewriter{uploader: uploader}
}

// Rewrite parses the bundle HTML tolerantly, uploads every local image the
// document references and swaps each img src for the uploaded URL. Image
// failures never abort the pass: the original src stays in place and the
// failure is recorded in the outcome log. References that already point at
// an http(s) URL are assumed externally hosted and left alone.
func (r *Rewriter) Rewrite(content []byte, bundleRoot string) (string, []ImageOutcome, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse content HTML: %w", err)
	}

	var outcomes []ImageOutcome
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok || src == "" {
			return
		}
		if strings.HasPrefix(src, "http") {
			return
		}
		outcomes = append(outcomes, r.rewriteImage(sel, src, bundleRoot))
	})

	html, err := doc.Html()
	if err != nil {
		return "", outcomes, fmt.Errorf("failed to serialize content HTML: %w", err)
	}
	return html, outcomes, nil
}

func (r *Rewriter) rewriteImage(sel *goquery.Selection, src, bundleRoot string) ImageOutcome {
	path := filepath.Join(bundleRoot, filepath.FromSlash(src))

	data, err := os.ReadFile(path)
	if err != nil {
		return ImageOutcome{OriginalSrc: src, Status: ImageNotFound}
	}

	uploaded, err := r.uploader.Upload(filepath.Base(path), data)
	if err != nil {
		return ImageOutcome{OriginalSrc: src, Status: ImageUploadFailed}
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	attachmentID, err := r.uploader.RegisterAttachment(uploaded.StoragePath, title)
	if err != nil {
		return ImageOutcome{OriginalSrc: src, Status: ImageAttachFailed}
	}

	sel.SetAttr("src", uploaded.URL)
	return ImageOutcome{
		OriginalSrc:  src,
		Status:       ImageUploaded,
		NewURL:       uploaded.URL,
		AttachmentID: attachmentID,
	}
}

// UploadFeaturedImage uploads the first existing featured-image candidate
// and returns its attachment ID. Returns 0 with no error when the bundle has
// no usable candidate.
func UploadFeaturedImage(uploader Uploader, candidates []string) (uint, error) {
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		uploaded, err := uploader.Upload(filepath.Base(path), data)
		if err != nil {
			return 0, fmt.Errorf("failed to upload featured image %s: %w", filepath.Base(path), err)
		}
		title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		attachmentID, err := uploader.RegisterAttachment(uploaded.StoragePath, title)
		if err != nil {
			return 0, fmt.Errorf("failed to attach featured image %s: %w", filepath.Base(path), err)
		}
		return attachmentID, nil
	}
	return 0, nil
}
