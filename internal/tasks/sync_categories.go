package tasks

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/storyhub/internal/sources"
)

// CategorySyncer is implemented by sources.Service.
type CategorySyncer interface {
	SyncCategories(ctx context.Context, namespace string) sources.SyncResult
	SyncAll(ctx context.Context) ([]sources.SyncResult, error)
}

// SyncStatusRecorder stores the outcome of the last sync run.
// Implemented by settingsstore.SettingsStore.
type SyncStatusRecorder interface {
	SetCategorySyncStatus(status, message string) error
}

const (
	SyncStatusSuccess = "success"
	SyncStatusPartial = "partial"
	SyncStatusFailed  = "failed"
)

// SyncCategoriesTask refreshes the category tree of one source.
type SyncCategoriesTask struct {
	Namespace string `json:"namespace"`
}

func (t SyncCategoriesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "sync_categories",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SyncCategoriesProcessor returns an error for a failed sync so backlite retries it.
func SyncCategoriesProcessor(syncer CategorySyncer) backlite.QueueProcessor[SyncCategoriesTask] {
	return func(ctx context.Context, task SyncCategoriesTask) error {
		if syncer == nil {
			return fmt.Errorf("category syncer not configured")
		}
		if task.Namespace == "" {
			return fmt.Errorf("namespace is required")
		}

		result := syncer.SyncCategories(ctx, task.Namespace)
		if !result.Success {
			return fmt.Errorf("sync %s: %s", task.Namespace, result.Reason)
		}
		return nil
	}
}

func NewSyncCategoriesQueue(syncer CategorySyncer) backlite.Queue {
	return backlite.NewQueue(SyncCategoriesProcessor(syncer))
}

// SyncAllCategoriesTask refreshes every stored source and records the
// combined outcome.
type SyncAllCategoriesTask struct {
	Trigger string `json:"trigger"` // "manual" or "scheduled"
}

func (t SyncAllCategoriesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "sync_all_categories",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     15 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SyncAllCategoriesProcessor does not retry individual sources; their
// failures are summarized into the recorded status.
func SyncAllCategoriesProcessor(syncer CategorySyncer, recorder SyncStatusRecorder) backlite.QueueProcessor[SyncAllCategoriesTask] {
	return func(ctx context.Context, task SyncAllCategoriesTask) error {
		if syncer == nil {
			return fmt.Errorf("category syncer not configured")
		}

		results, err := syncer.SyncAll(ctx)
		status, message := SummarizeSync(results, err)
		log.Printf("[TASK] Category sync (%s): %s - %s", task.Trigger, status, message)

		if recorder != nil {
			if recErr := recorder.SetCategorySyncStatus(status, message); recErr != nil {
				log.Printf("[TASK ERROR] Failed to record sync status: %v", recErr)
			}
		}

		if err != nil {
			return fmt.Errorf("sync all categories: %w", err)
		}
		return nil
	}
}

func NewSyncAllCategoriesQueue(syncer CategorySyncer, recorder SyncStatusRecorder) backlite.Queue {
	return backlite.NewQueue(SyncAllCategoriesProcessor(syncer, recorder))
}

// SummarizeSync turns a batch of results into a status and a one-line message.
func SummarizeSync(results []sources.SyncResult, err error) (string, string) {
	if err != nil {
		return SyncStatusFailed, err.Error()
	}
	if len(results) == 0 {
		return SyncStatusSuccess, "No sources configured"
	}

	var failed []string
	for _, r := range results {
		if !r.Success {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Namespace, r.Reason))
		}
	}

	switch {
	case len(failed) == 0:
		return SyncStatusSuccess, fmt.Sprintf("Synced %d sources", len(results))
	case len(failed) == len(results):
		return SyncStatusFailed, strings.Join(failed, "; ")
	default:
		return SyncStatusPartial, fmt.Sprintf("%d of %d sources failed: %s",
			len(failed), len(results), strings.Join(failed, "; "))
	}
}
