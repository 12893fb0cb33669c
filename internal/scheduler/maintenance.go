package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"
)

// DefaultMaintenanceSchedule runs housekeeping daily at 03:30.
const DefaultMaintenanceSchedule = "30 3 * * *"

// MaintenanceScheduler enqueues housekeeping tasks on a fixed schedule.
type MaintenanceScheduler struct {
	queue    TaskQueue
	schedule string
	jobs     func() []backlite.Task

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewMaintenanceScheduler enqueues the tasks returned by jobs on every tick.
// jobs is called per tick so task parameters may follow settings changes.
func NewMaintenanceScheduler(queue TaskQueue, schedule string, jobs func() []backlite.Task) *MaintenanceScheduler {
	if schedule == "" {
		schedule = DefaultMaintenanceSchedule
	}
	return &MaintenanceScheduler{
		queue:    queue,
		schedule: schedule,
		jobs:     jobs,
		cron:     newCron(),
	}
}

func (m *MaintenanceScheduler) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isRunning {
		return nil
	}
	if _, err := m.cron.AddFunc(m.schedule, func() { m.Tick() }); err != nil {
		return fmt.Errorf("invalid maintenance schedule '%s': %w", m.schedule, err)
	}
	m.cron.Start()
	m.isRunning = true
	log.Printf("Maintenance scheduler: started with schedule '%s'", m.schedule)

	go func() {
		<-ctx.Done()
		m.Stop()
	}()
	return nil
}

func (m *MaintenanceScheduler) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isRunning {
		return
	}
	<-m.cron.Stop().Done()
	m.isRunning = false
	log.Printf("Maintenance scheduler: stopped")
}

// Tick enqueues one round of housekeeping tasks.
func (m *MaintenanceScheduler) Tick() {
	jobs := m.jobs()
	if len(jobs) == 0 {
		return
	}
	if _, err := m.queue.Add(jobs...).Save(); err != nil {
		log.Printf("Maintenance: failed to enqueue %d tasks: %v", len(jobs), err)
		return
	}
	log.Printf("Maintenance: enqueued %d tasks", len(jobs))
}
