package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// ImportLogPruner deletes import logs older than a cutoff.
type ImportLogPruner interface {
	DeleteImportLogsBefore(cutoff time.Time) (int64, error)
}

// CleanupImportLogsTask removes import logs past their retention period.
type CleanupImportLogsTask struct {
	Retention time.Duration `json:"retention"`
}

// Config returns the queue configuration for import log cleanup tasks.
func (t CleanupImportLogsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_import_logs",
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupImportLogsProcessor creates a processor function for
// CleanupImportLogsTask.
func CleanupImportLogsProcessor(pruner ImportLogPruner) backlite.QueueProcessor[CleanupImportLogsTask] {
	return func(ctx context.Context, task CleanupImportLogsTask) error {
		if pruner == nil {
			return fmt.Errorf("import log store not configured")
		}

		removed, err := pruner.DeleteImportLogsBefore(time.Now().Add(-task.Retention))
		if err != nil {
			return fmt.Errorf("cleanup import logs: %w", err)
		}

		if removed > 0 {
			log.Printf("[TASK] Removed %d expired import logs", removed)
		}
		return nil
	}
}

// NewCleanupImportLogsQueue creates a backlite queue for import log cleanup.
func NewCleanupImportLogsQueue(pruner ImportLogPruner) backlite.Queue {
	return backlite.NewQueue(CleanupImportLogsProcessor(pruner))
}
