package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/storyhub/internal/storage"
)

// BookFiles lists and removes stored e-book files. Implemented by storage.Local.
type BookFiles interface {
	List() ([]storage.FileInfo, error)
	Remove(path string) error
}

// ReferencedPaths returns the file paths still used by a book record.
// Implemented by database/ebooks.Repository.
type ReferencedPaths interface {
	ListFilePaths() ([]string, error)
}

// CleanupOrphanFilesTask removes stored files no book refers to. Files newer
// than the grace period are kept so an import in flight is not raced.
type CleanupOrphanFilesTask struct {
	GraceMinutes int `json:"grace_minutes"`
}

func (t CleanupOrphanFilesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_orphan_files",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func CleanupOrphanFilesProcessor(files BookFiles, refs ReferencedPaths) backlite.QueueProcessor[CleanupOrphanFilesTask] {
	return func(ctx context.Context, task CleanupOrphanFilesTask) error {
		if files == nil || refs == nil {
			return fmt.Errorf("file cleanup not configured")
		}

		removed, err := RemoveOrphanFiles(files, refs, graceFor(task), time.Now())
		if err != nil {
			return err
		}
		log.Printf("[TASK] Removed %d orphaned book files", removed)
		return nil
	}
}

func NewCleanupOrphanFilesQueue(files BookFiles, refs ReferencedPaths) backlite.Queue {
	return backlite.NewQueue(CleanupOrphanFilesProcessor(files, refs))
}

// RemoveOrphanFiles deletes every unreferenced file last modified before now-grace.
func RemoveOrphanFiles(files BookFiles, refs ReferencedPaths, grace time.Duration, now time.Time) (int, error) {
	stored, err := files.List()
	if err != nil {
		return 0, fmt.Errorf("list book files: %w", err)
	}
	paths, err := refs.ListFilePaths()
	if err != nil {
		return 0, fmt.Errorf("list referenced files: %w", err)
	}

	referenced := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		referenced[p] = struct{}{}
	}

	cutoff := now.Add(-grace)
	orphans := storage.FilterFiles(stored, func(f storage.FileInfo) bool {
		_, used := referenced[f.Path]
		return !used && f.ModifiedAt.Before(cutoff)
	})

	removed := 0
	for _, f := range orphans {
		if err := files.Remove(f.Path); err != nil {
			log.Printf("[TASK ERROR] Failed to remove %s: %v", f.Path, err)
			continue
		}
		removed++
	}
	return removed, nil
}

func graceFor(task CleanupOrphanFilesTask) time.Duration {
	if task.GraceMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(task.GraceMinutes) * time.Minute
}
