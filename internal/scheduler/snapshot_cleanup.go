package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shelfspace/bookshelf/internal/database"
	"github.com/shelfspace/bookshelf/internal/tasks"
)

// SnapshotCleanupScheduler enqueues periodic purges of expired
// pending-import snapshots. With no task client configured it runs the
// purge inline instead.
type SnapshotCleanupScheduler struct {
	store      *database.SnapshotStore
	taskClient *tasks.Client
	schedule   string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewSnapshotCleanupScheduler creates a scheduler for the given cron
// schedule (standard five-field format, e.g. "0 * * * *" for hourly).
func NewSnapshotCleanupScheduler(store *database.SnapshotStore, schedule string) *SnapshotCleanupScheduler {
	return &SnapshotCleanupScheduler{
		store:    store,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// SetTaskClient routes cleanup runs through the task queue (optional).
func (s *SnapshotCleanupScheduler) SetTaskClient(client *tasks.Client) {
	s.taskClient = client
}

// Start begins the scheduler.
func (s *SnapshotCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runCleanup()
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Snapshot cleanup scheduler: started with schedule '%s'", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running purge.
func (s *SnapshotCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Snapshot cleanup scheduler: stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *SnapshotCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next cleanup will occur.
func (s *SnapshotCleanupScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *SnapshotCleanupScheduler) runCleanup() {
	if s.taskClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.taskClient.EnqueueSnapshotCleanup(ctx); err != nil {
			log.Printf("Snapshot cleanup: failed to enqueue task: %v", err)
		}
		return
	}

	removed, err := s.store.DeleteExpired()
	if err != nil {
		log.Printf("Snapshot cleanup: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("Snapshot cleanup: purged %d expired snapshots", removed)
	}
}
