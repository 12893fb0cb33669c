// Package interfaces documents the core abstractions used throughout the application.
//
// Consumers declare the small interfaces they need next to the code that uses
// them; concrete types live in their own packages. checks.go pins every
// pairing at compile time.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - SourceStore, CategoryStore: source definitions and category trees (internal/sources/service.go)
//   - Store: e-books and chapters (internal/importers/pipeline.go)
//   - EventRepository: audit events (internal/audit/service.go)
//   - SettingsRepository: runtime setting overrides (internal/settingsstore/settingsstore.go)
//
// ## Upstream Content Sources
//
//   - Fetcher: category and list envelopes over HTTP (internal/sources/service.go)
//   - EnvelopeRecorder: raw envelope capture for debugging (internal/sources/service.go)
//
// ## HTTP Layer
//
//   - SourceService, CategoryService, EbookLifecycle, EbookReader, AuditLog (internal/http/stores.go)
//
// ## Background Work
//
//   - CategorySyncer, SyncStatusRecorder: sync tasks (internal/tasks/sync_categories.go)
//   - TaskQueue: cron schedulers enqueue through the task client (internal/scheduler/category_sync.go)
//
// # Adding a New Content Type Template
//
//  1. Add the ContentType constant in internal/entities/source.go
//
//  2. Add its default mappings to mapping.DefaultTemplates in internal/mapping/
//
//  3. Cover it in the template tests; sources saved without mappings pick it up
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Register the entity in database.NewDatabase's AutoMigrate list
//
//  4. Add compile-time check:
//
//     var _ SomeStore = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
