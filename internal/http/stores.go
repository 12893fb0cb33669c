package http

import (
	"context"
	"io"
	"time"

	"github.com/mrlokans/storyhub/internal/database/audit"
	"github.com/mrlokans/storyhub/internal/entities"
	"github.com/mrlokans/storyhub/internal/importers"
	"github.com/mrlokans/storyhub/internal/mapping"
	"github.com/mrlokans/storyhub/internal/settingsstore"
	"github.com/mrlokans/storyhub/internal/sources"
)

// This file collects the collaborator interfaces of the HTTP controllers.

// SourceService is implemented by sources.Service.
type SourceService interface {
	ListSources() ([]entities.ContentSource, error)
	GetSource(namespace string) (*entities.ContentSource, error)
	SaveSource(ctx context.Context, src *entities.ContentSource) (*sources.SaveResult, error)
	DeleteSource(namespace string) error
	EditConfig(ctx context.Context, namespace string, edit func(*mapping.Editor) error) (*sources.SaveResult, error)
	ListItems(ctx context.Context, namespace string, page, typeID int) (*sources.ItemPage, error)
	Templates() mapping.Templates
}

// CategoryService is implemented by sources.Service.
type CategoryService interface {
	SyncCategories(ctx context.Context, namespace string) sources.SyncResult
	GetCategories(namespace string) ([]entities.Category, error)
	GetTopLevelCategories(namespace string) ([]entities.Category, error)
	GetChildCategories(namespace string, parentID int) ([]entities.Category, error)
}

// EbookLifecycle is implemented by importers.Pipeline.
type EbookLifecycle interface {
	Import(ctx context.Context, src io.Reader, displayName string) (importers.ImportResult, error)
	Share(ctx context.Context, id string) (*entities.Ebook, error)
	Delete(ctx context.Context, id string) error
}

// EbookReader is implemented by database/ebooks.Repository.
type EbookReader interface {
	List() ([]entities.Ebook, error)
	GetByID(id string) (*entities.Ebook, error)
	GetChapters(ebookID string) ([]entities.EbookChapter, error)
	GetChapter(ebookID string, index int) (*entities.EbookChapter, error)
	UpdateProgress(id string, chapter, position int) error
}

// AuditLog is implemented by audit.Service.
type AuditLog interface {
	GetEvents(filter audit.Filter, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEvent(id uint) (*entities.AuditEvent, error)
	LogImport(displayName, bookID string, chapters int, err error)
	LogShare(sourceID, copyID, title string)
	LogDelete(entityType, entityID, entityName string)
	LogSettings(action, description string)
}

// CategorySyncSettings is implemented by settingsstore.SettingsStore.
type CategorySyncSettings interface {
	GetCategorySyncConfigInfo() settingsstore.CategorySyncConfigInfo
	GetCategorySyncStatus() settingsstore.CategorySyncStatus
	SetCategorySyncEnabled(enabled bool) error
	SetCategorySyncSchedule(schedule string) error
	ClearCategorySyncSettings() error
}

// SyncScheduler is implemented by scheduler.CategorySyncScheduler.
type SyncScheduler interface {
	Reschedule() error
	RunNow() error
	IsRunning() bool
	GetNextRunTime() *time.Time
}

// ImportRecorder is implemented by metrics.Collector.
type ImportRecorder interface {
	RecordImport(success bool, chapters int)
}
