// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── categories/      # Per-namespace category sets
//	├── contentsources/  # Content sources and their field mappings
//	├── ebooks/          # Imported e-books and chapters
//	├── settings/        # Application settings
//	└── audit/           # Audit trail
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./storyhub.db")
//
//	categoryRepo := categories.NewRepository(db.DB)
//	ebookRepo := ebooks.NewRepository(db.DB)
//
//	err = categoryRepo.ReplaceNamespace("vod1", reconciled)
//	book, err := ebookRepo.GetByID(id)
//
// Multi-row writes (category replacement, book import, cloning, deletion)
// run inside a single transaction. Lookups return gorm.ErrRecordNotFound
// unchanged so callers can map it with errors.Is.
//
// # Interface Implementations
//
//   - ebooks.Repository: implements importers.Store
//   - categories.Repository: implements sources.CategoryStore
//   - contentsources.Repository: implements sources.SourceStore
//   - settings.Repository: implements settingsstore.SettingsRepository
//   - audit.Repository: implements audit.EventRepository
package database
