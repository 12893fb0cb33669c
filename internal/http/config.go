package http

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mrlokans/storyhub/internal/categories"
	"github.com/mrlokans/storyhub/internal/database"
	"github.com/mrlokans/storyhub/internal/metrics"
	"github.com/mrlokans/storyhub/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. Optional collaborators may be nil; their
// routes are then not registered.
type RouterConfig struct {
	// Core dependencies
	Database   *database.Database
	Sources    SourceService
	Categories CategoryService
	Taxonomy   *categories.Taxonomy // defaults to categories.DefaultTaxonomy()

	// E-books
	Ebooks         EbookLifecycle
	EbookReader    EbookReader
	MaxUploadBytes int64

	// Audit trail
	AuditLog AuditLog

	// Scheduled category sync
	SyncSettings  CategorySyncSettings
	SyncScheduler SyncScheduler

	// Task queue client (optional)
	TaskClient  *tasks.Client
	TaskWorkers int

	// Prometheus (optional)
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer

	// Reject writes under /api (preview endpoints excepted)
	ReadOnly bool

	// Application info
	Version string
}
