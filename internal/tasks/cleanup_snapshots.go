package tasks

import (
	"context"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/shelfspace/bookshelf/internal/database"
)

// CleanupSnapshotsTask purges expired pending-import snapshots. Enqueued
// on a cron schedule; see the scheduler package.
type CleanupSnapshotsTask struct{}

// Config returns the queue configuration for snapshot cleanup tasks.
func (t CleanupSnapshotsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_snapshots",
		MaxAttempts: 2,
		Backoff:     1 * time.Minute,
		Timeout:     1 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: true,
		},
	}
}

// CleanupSnapshotsProcessor creates the processor for CleanupSnapshotsTask.
func CleanupSnapshotsProcessor(store *database.SnapshotStore) backlite.QueueProcessor[CleanupSnapshotsTask] {
	return func(ctx context.Context, task CleanupSnapshotsTask) error {
		removed, err := store.DeleteExpired()
		if err != nil {
			return err
		}
		if removed > 0 {
			log.Printf("[TASK] Purged %d expired import snapshots", removed)
		}
		return nil
	}
}

// NewCleanupSnapshotsQueue creates a backlite queue for snapshot cleanup.
func NewCleanupSnapshotsQueue(store *database.SnapshotStore) backlite.Queue {
	return backlite.NewQueue(CleanupSnapshotsProcessor(store))
}
