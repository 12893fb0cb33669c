// Package scheduler runs periodic background jobs on cron schedules whose
// settings can change at runtime.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/storyhub/internal/settingsstore"
	"github.com/mrlokans/storyhub/internal/tasks"
)

// CategorySyncSettings is implemented by settingsstore.SettingsStore.
type CategorySyncSettings interface {
	GetCategorySyncConfig() settingsstore.CategorySyncConfig
	SetCategorySyncStatus(status, message string) error
}

// TaskQueue is implemented by tasks.Client.
type TaskQueue interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// CategorySyncScheduler periodically refreshes the categories of every source.
// With a task queue the run is enqueued; without one it runs in place.
type CategorySyncScheduler struct {
	syncer   tasks.CategorySyncer
	settings CategorySyncSettings
	queue    TaskQueue

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
	generation uint64 // bumped on every Start
}

// NewCategorySyncScheduler creates a scheduler. queue may be nil.
func NewCategorySyncScheduler(syncer tasks.CategorySyncer, settings CategorySyncSettings, queue TaskQueue) *CategorySyncScheduler {
	return &CategorySyncScheduler{
		syncer:   syncer,
		settings: settings,
		queue:    queue,
		cron:     newCron(),
	}
}

func newCron() *cron.Cron {
	return cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)))
}

// Start schedules the sync job when sync is enabled.
func (s *CategorySyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	config := s.settings.GetCategorySyncConfig()
	if !config.Enabled {
		log.Printf("Category sync scheduler: disabled")
		return nil
	}

	if err := settingsstore.ValidateCronSchedule(config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(config.Schedule, func() {
		s.run(context.Background(), "scheduled")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)
	s.generation++
	gen := s.generation

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := settingsstore.GetNextRunTime(config.Schedule)
	log.Printf("Category sync scheduler: started with schedule '%s' (%s). Next run: %v",
		config.Schedule,
		settingsstore.GetCronDescription(config.Schedule),
		nextRun)

	// Only stop the schedule this goroutine was started for; a Reschedule
	// may already have replaced it.
	go func() {
		<-cancelCtx.Done()
		s.stopGeneration(gen)
	}()

	return nil
}

// Stop waits for a running job and removes the schedule.
func (s *CategorySyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *CategorySyncScheduler) stopGeneration(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return
	}
	s.stopLocked()
}

func (s *CategorySyncScheduler) stopLocked() {
	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.isRunning = false

	log.Printf("Category sync scheduler: stopped")
}

// Reschedule re-reads the settings; call it after they change.
func (s *CategorySyncScheduler) Reschedule() error {
	s.Stop()
	return s.Start(context.Background())
}

// RunNow triggers a sync outside the schedule without waiting for it.
func (s *CategorySyncScheduler) RunNow() error {
	if s.queue != nil {
		return s.enqueue("manual")
	}
	go s.run(context.Background(), "manual")
	return nil
}

func (s *CategorySyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns nil when the scheduler is stopped.
func (s *CategorySyncScheduler) GetNextRunTime() *time.Time {
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

func (s *CategorySyncScheduler) run(ctx context.Context, trigger string) {
	if s.queue != nil {
		if err := s.enqueue(trigger); err != nil {
			log.Printf("Category sync: %v", err)
			_ = s.settings.SetCategorySyncStatus(tasks.SyncStatusFailed, err.Error())
		}
		return
	}

	process := tasks.SyncAllCategoriesProcessor(s.syncer, s.settings)
	if err := process(ctx, tasks.SyncAllCategoriesTask{Trigger: trigger}); err != nil {
		log.Printf("Category sync: %v", err)
	}
}

func (s *CategorySyncScheduler) enqueue(trigger string) error {
	if _, err := s.queue.Add(tasks.SyncAllCategoriesTask{Trigger: trigger}).Save(); err != nil {
		return fmt.Errorf("failed to enqueue category sync: %w", err)
	}
	log.Printf("Category sync: enqueued (%s)", trigger)
	return nil
}
