// Package importer orchestrates the import of a content bundle: extraction,
// candidate selection, metadata normalization, asset rewriting, scheduling
// and the final repository hand-off.
package importer

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gurkhatech/bundlepress/internal/assets"
	"github.com/gurkhatech/bundlepress/internal/bundle"
	"github.com/gurkhatech/bundlepress/internal/entities"
	"github.com/gurkhatech/bundlepress/internal/metadata"
	"github.com/gurkhatech/bundlepress/internal/scheduler"
	"github.com/gurkhatech/bundlepress/internal/scratch"
	"github.com/gurkhatech/bundlepress/internal/tasks"
)

// ErrRepositoryRejected marks a downstream failure creating the post.
var ErrRepositoryRejected = errors.New("content repository rejected the post")

// ContentRepository is the slice of the storage layer the importer needs.
type ContentRepository interface {
	CreateScheduledPost(post *entities.Post) error
	SetPostTags(postID uint, names []string) error
	SetPostMeta(postID uint, key, value string) error
	SetFeaturedImage(postID, attachmentID uint) error
	SaveImportLog(postID uint, sourceFile string, entries []string) error
	GetPostByID(id uint) (*entities.Post, error)
}

// Result is the per-bundle outcome of an import.
type Result struct {
	SourceFile string `json:"filename"`
	Success    bool   `json:"success"`
	PostID     uint   `json:"post_id,omitempty"`
	PostTitle  string `json:"post_title,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Upload is one slot of a batch import. Slots with an empty Path are
// skipped without producing a result.
type Upload struct {
	Path string
	Name string
}

type Importer struct {
	scratch    *scratch.Store
	repo       ContentRepository
	uploader   assets.Uploader
	sched      *scheduler.PublishScheduler
	taskClient *tasks.Client // optional, disables background metadata when nil
}

func New(store *scratch.Store, repo ContentRepository, uploader assets.Uploader, sched *scheduler.PublishScheduler, taskClient *tasks.Client) *Importer {
	return &Importer{
		scratch:    store,
		repo:       repo,
		uploader:   uploader,
		sched:      sched,
		taskClient: taskClient,
	}
}

// ImportArchive runs the full pipeline for a single zip archive. Fatal
// errors are captured in the result rather than returned, so batch callers
// can keep going.
func (imp *Importer) ImportArchive(archivePath, sourceName string) Result {
	postID, title, err := imp.importOne(archivePath, sourceName)
	if err != nil {
		return Result{SourceFile: sourceName, Error: err.Error()}
	}
	return Result{SourceFile: sourceName, Success: true, PostID: postID, PostTitle: title}
}

// ImportBatch processes every upload independently. One bundle's failure
// never aborts its siblings; the result order matches the input order among
// non-empty slots.
func (imp *Importer) ImportBatch(uploads []Upload) []Result {
	results := make([]Result, 0, len(uploads))
	for _, upload := range uploads {
		if upload.Path == "" {
			continue
		}
		results = append(results, imp.ImportArchive(upload.Path, upload.Name))
	}
	return results
}

func (imp *Importer) importOne(archivePath, sourceName string) (uint, string, error) {
	dir, err := imp.scratch.CreateDir()
	if err != nil {
		return 0, "", fmt.Errorf("failed to create scratch dir: %w", err)
	}
	// The scratch dir is released on every exit path, success or failure.
	defer func() {
		if err := imp.scratch.Release(dir); err != nil {
			log.Printf("Failed to release scratch dir %s: %v", dir, err)
		}
	}()

	if err := bundle.ExtractZip(archivePath, dir); err != nil {
		return 0, "", err
	}

	set, err := bundle.Scan(dir)
	if err != nil {
		return 0, "", fmt.Errorf("failed to scan bundle: %w", err)
	}

	contentPath, err := bundle.SelectContent(set)
	if err != nil {
		return 0, "", err
	}
	metaPath, err := bundle.SelectMeta(set)
	if err != nil {
		return 0, "", err
	}

	rec, err := metadata.ParseFile(metaPath)
	if err != nil {
		return 0, "", err
	}

	content, err := os.ReadFile(contentPath)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read content file: %w", err)
	}

	rewriter := assets.NewRewriter(imp.uploader)
	body, outcomes, err := rewriter.Rewrite(content, dir)
	if err != nil {
		return 0, "", err
	}

	// Cover image failures are logged, never fatal.
	featuredID, err := assets.UploadFeaturedImage(imp.uploader, set.FeaturedImages)
	if err != nil {
		log.Printf("Featured image for %s: %v", sourceName, err)
		featuredID = 0
	}

	post := &entities.Post{
		Title:  rec.Title,
		Slug:   rec.Slug,
		Body:   body,
		Status: entities.PostStatusFuture,
	}

	err = imp.sched.ScheduleWith(func(slot time.Time) error {
		post.PublishAt = slot
		if err := imp.repo.CreateScheduledPost(post); err != nil {
			return fmt.Errorf("%w: %v", ErrRepositoryRejected, err)
		}
		return nil
	})
	if err != nil {
		return 0, "", err
	}

	imp.applyMetadata(post.ID, rec, featuredID, sourceName)
	imp.saveOutcomeLog(post.ID, sourceName, outcomes)
	imp.enqueueAttachmentMetadata(outcomes, featuredID)

	title := rec.Title
	if saved, err := imp.repo.GetPostByID(post.ID); err == nil {
		title = saved.Title
	}
	return post.ID, title, nil
}

// applyMetadata sets tags, SEO meta fields and the cover image. The post
// already exists, so failures here are logged rather than failing the
// bundle.
func (imp *Importer) applyMetadata(postID uint, rec *metadata.Record, featuredID uint, sourceName string) {
	if len(rec.Tags) > 0 {
		if err := imp.repo.SetPostTags(postID, rec.Tags); err != nil {
			log.Printf("Failed to set tags for %s: %v", sourceName, err)
		}
	}
	if rec.Description != "" {
		if err := imp.repo.SetPostMeta(postID, entities.MetaKeyDescription, rec.Description); err != nil {
			log.Printf("Failed to set description for %s: %v", sourceName, err)
		}
	}
	if len(rec.FocusKeywords) > 0 {
		value := ""
		for i, kw := range rec.FocusKeywords {
			if i > 0 {
				value += ", "
			}
			value += kw
		}
		if err := imp.repo.SetPostMeta(postID, entities.MetaKeyFocusKeywords, value); err != nil {
			log.Printf("Failed to set focus keywords for %s: %v", sourceName, err)
		}
	}
	if featuredID != 0 {
		if err := imp.repo.SetFeaturedImage(postID, featuredID); err != nil {
			log.Printf("Failed to set featured image for %s: %v", sourceName, err)
		}
	}
}

func (imp *Importer) saveOutcomeLog(postID uint, sourceName string, outcomes []assets.ImageOutcome) {
	if len(outcomes) == 0 {
		return
	}
	entries := make([]string, len(outcomes))
	for i, o := range outcomes {
		entries[i] = o.LogLine()
	}
	if err := imp.repo.SaveImportLog(postID, sourceName, entries); err != nil {
		log.Printf("Failed to save import log for %s: %v", sourceName, err)
	}
}

func (imp *Importer) enqueueAttachmentMetadata(outcomes []assets.ImageOutcome, featuredID uint) {
	if imp.taskClient == nil {
		return
	}
	ids := make([]uint, 0, len(outcomes)+1)
	for _, o := range outcomes {
		if o.AttachmentID != 0 {
			ids = append(ids, o.AttachmentID)
		}
	}
	if featuredID != 0 {
		ids = append(ids, featuredID)
	}
	for _, id := range ids {
		if _, err := imp.taskClient.Add(tasks.AttachmentMetadataTask{AttachmentID: id}).Save(); err != nil {
			log.Printf("Failed to enqueue metadata task for attachment %d: %v", id, err)
		}
	}
}
