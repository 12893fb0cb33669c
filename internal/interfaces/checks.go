package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/storyhub/internal/audit"
	auditrepo "github.com/mrlokans/storyhub/internal/database/audit"
	catstore "github.com/mrlokans/storyhub/internal/database/categories"
	"github.com/mrlokans/storyhub/internal/database/contentsources"
	"github.com/mrlokans/storyhub/internal/database/ebooks"
	"github.com/mrlokans/storyhub/internal/database/settings"
	"github.com/mrlokans/storyhub/internal/http"
	"github.com/mrlokans/storyhub/internal/importers"
	"github.com/mrlokans/storyhub/internal/metrics"
	"github.com/mrlokans/storyhub/internal/parsers"
	"github.com/mrlokans/storyhub/internal/scheduler"
	"github.com/mrlokans/storyhub/internal/settingsstore"
	"github.com/mrlokans/storyhub/internal/sources"
	"github.com/mrlokans/storyhub/internal/storage"
	"github.com/mrlokans/storyhub/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ sources.SourceStore = (*contentsources.Repository)(nil)
var _ sources.CategoryStore = (*catstore.Repository)(nil)
var _ importers.Store = (*ebooks.Repository)(nil)
var _ tasks.ReferencedPaths = (*ebooks.Repository)(nil)
var _ audit.EventRepository = (*auditrepo.Repository)(nil)
var _ settingsstore.SettingsRepository = (*settings.Repository)(nil)

// =============================================================================
// Content Sources
// =============================================================================

var _ sources.Fetcher = (*sources.Client)(nil)
var _ sources.EnvelopeRecorder = (*audit.Auditor)(nil)
var _ sources.SyncLogger = (*audit.Service)(nil)
var _ sources.MetricsRecorder = (*metrics.Collector)(nil)

// =============================================================================
// E-book Import Pipeline
// =============================================================================

var _ importers.FileStore = (*storage.Local)(nil)
var _ importers.ChapterParser = (*parsers.ChapterParser)(nil)
var _ tasks.BookFiles = (*storage.Local)(nil)

// =============================================================================
// HTTP Layer
// =============================================================================

var _ http.SourceService = (*sources.Service)(nil)
var _ http.CategoryService = (*sources.Service)(nil)
var _ http.EbookLifecycle = (*importers.Pipeline)(nil)
var _ http.EbookReader = (*ebooks.Repository)(nil)
var _ http.AuditLog = (*audit.Service)(nil)
var _ http.CategorySyncSettings = (*settingsstore.SettingsStore)(nil)
var _ http.SyncScheduler = (*scheduler.CategorySyncScheduler)(nil)
var _ http.ImportRecorder = (*metrics.Collector)(nil)
var _ http.HTTPRecorder = (*metrics.Collector)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.CategorySyncer = (*sources.Service)(nil)
var _ tasks.SyncStatusRecorder = (*settingsstore.SettingsStore)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ tasks.EnvelopePruner = (*audit.Auditor)(nil)
var _ scheduler.CategorySyncSettings = (*settingsstore.SettingsStore)(nil)
var _ scheduler.TaskQueue = (*tasks.Client)(nil)
