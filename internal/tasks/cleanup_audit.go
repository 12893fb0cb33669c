package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// AuditEventCleaner deletes old audit events. Implemented by audit.Service.
type AuditEventCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// EnvelopePruner deletes captured response files. Implemented by audit.Auditor.
type EnvelopePruner interface {
	Prune(cutoff time.Time) (int, error)
}

// CleanupAuditEventsTask removes audit events and captured envelopes older
// than the retention period.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_audit_events",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupAuditEventsProcessor creates a processor for CleanupAuditEventsTask.
// pruner may be nil when responses are not captured.
func CleanupAuditEventsProcessor(cleaner AuditEventCleaner, pruner EnvelopePruner) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if cleaner == nil {
			return fmt.Errorf("audit event cleaner not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = 30
		}
		retention := time.Duration(retentionDays) * 24 * time.Hour

		deleted, err := cleaner.DeleteOldEvents(retention)
		if err != nil {
			return fmt.Errorf("cleanup audit events: %w", err)
		}
		log.Printf("[TASK] Cleaned up %d audit events older than %d days", deleted, retentionDays)

		if pruner != nil {
			removed, err := pruner.Prune(time.Now().Add(-retention))
			if err != nil {
				return fmt.Errorf("prune captured responses: %w", err)
			}
			log.Printf("[TASK] Removed %d captured responses", removed)
		}
		return nil
	}
}

func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner, pruner EnvelopePruner) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner, pruner))
}
