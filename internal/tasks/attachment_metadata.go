package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/gurkhatech/bundlepress/internal/media"
)

// AttachmentMetadataTask generates derived metadata (image dimensions) for a
// registered attachment. Failures are logged and retried a few times but
// never affect the import that enqueued the task.
type AttachmentMetadataTask struct {
	AttachmentID uint `json:"attachment_id"`
}

// Config returns the queue configuration for attachment metadata tasks.
func (t AttachmentMetadataTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "attachment_metadata",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// AttachmentMetadataProcessor creates a processor function for
// AttachmentMetadataTask.
func AttachmentMetadataProcessor(library *media.Library) backlite.QueueProcessor[AttachmentMetadataTask] {
	return func(ctx context.Context, task AttachmentMetadataTask) error {
		if library == nil {
			return fmt.Errorf("media library not configured")
		}

		if err := library.GenerateMetadata(task.AttachmentID); err != nil {
			return fmt.Errorf("attachment metadata %d: %w", task.AttachmentID, err)
		}

		log.Printf("[TASK] Generated metadata for attachment %d", task.AttachmentID)
		return nil
	}
}

// NewAttachmentMetadataQueue creates a backlite queue for attachment
// metadata tasks.
func NewAttachmentMetadataQueue(library *media.Library) backlite.Queue {
	return backlite.NewQueue(AttachmentMetadataProcessor(library))
}
