// Package ebooks provides database operations for imported e-books and
// their chapters.
//
// This package implements the Store interface defined in
// internal/importers/pipeline.go.
//
// # Usage
//
//	repo := ebooks.NewRepository(db)
//	err := repo.CreateWithChapters(book, chapters)
//	chapter, err := repo.GetChapter(book.ID, 0)
package ebooks

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/storyhub/internal/entities"
)

const insertBatchSize = 100

// ErrInvalidProgress is returned when a reading position does not fit the book.
var ErrInvalidProgress = errors.New("invalid reading progress")

// Columns loaded for chapter listings, without the materialized content.
var chapterSummaryColumns = []string{
	"id", "ebook_id", "chapter_index", "title", "start_position", "end_position",
}

// Repository handles e-book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new e-books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithChapters writes a book and all of its chapters in one transaction.
func (r *Repository) CreateWithChapters(book *entities.Ebook, chapters []entities.EbookChapter) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Chapters").Create(book).Error; err != nil {
			return fmt.Errorf("failed to create book: %w", err)
		}
		if len(chapters) == 0 {
			return nil
		}
		for i := range chapters {
			chapters[i].EbookID = book.ID
		}
		if err := tx.CreateInBatches(&chapters, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to create chapters: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a book without its chapters.
func (r *Repository) GetByID(id string) (*entities.Ebook, error) {
	var book entities.Ebook
	if err := r.db.Where("id = ?", id).First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// List returns all books, most recently imported first.
func (r *Repository) List() ([]entities.Ebook, error) {
	var books []entities.Ebook
	err := r.db.Order("created_at DESC").Find(&books).Error
	return books, err
}

// GetChapters returns the chapter table of contents of a book, without content.
func (r *Repository) GetChapters(ebookID string) ([]entities.EbookChapter, error) {
	var chapters []entities.EbookChapter
	err := r.db.Select(chapterSummaryColumns).
		Where("ebook_id = ?", ebookID).
		Order("chapter_index ASC").
		Find(&chapters).Error
	return chapters, err
}

// GetChapter returns one chapter with its content.
func (r *Repository) GetChapter(ebookID string, index int) (*entities.EbookChapter, error) {
	var chapter entities.EbookChapter
	err := r.db.Where("ebook_id = ? AND chapter_index = ?", ebookID, index).First(&chapter).Error
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

// UpdateProgress records the reader's last chapter and position inside it.
func (r *Repository) UpdateProgress(id string, chapter, position int) error {
	book, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if chapter < 0 || chapter >= book.TotalChapters || position < 0 {
		return fmt.Errorf("%w: chapter %d, position %d", ErrInvalidProgress, chapter, position)
	}

	return r.db.Model(&entities.Ebook{}).Where("id = ?", id).Updates(map[string]any{
		"last_read_chapter":  chapter,
		"last_read_position": position,
	}).Error
}

// Clone copies a book and its chapters under newID in one transaction.
// The copy starts with no reading progress and shares the backing file.
func (r *Repository) Clone(id, newID string) (*entities.Ebook, error) {
	var clone entities.Ebook
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Ebook
		if err := tx.Where("id = ?", id).First(&book).Error; err != nil {
			return err
		}

		var chapters []entities.EbookChapter
		if err := tx.Where("ebook_id = ?", id).Order("chapter_index ASC").Find(&chapters).Error; err != nil {
			return err
		}

		clone = entities.Ebook{
			ID:            newID,
			Title:         book.Title,
			FilePath:      book.FilePath,
			FileSize:      book.FileSize,
			TotalChapters: book.TotalChapters,
		}
		if err := tx.Omit("Chapters").Create(&clone).Error; err != nil {
			return fmt.Errorf("failed to create clone: %w", err)
		}

		for i := range chapters {
			chapters[i].ID = 0
			chapters[i].EbookID = newID
		}
		if len(chapters) > 0 {
			if err := tx.CreateInBatches(&chapters, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to copy chapters: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &clone, nil
}

// Delete removes a book and its chapters in one transaction.
func (r *Repository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ebook_id = ?", id).Delete(&entities.EbookChapter{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&entities.Ebook{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// CountByFilePath counts the books backed by path.
func (r *Repository) CountByFilePath(path string) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Ebook{}).Where("file_path = ?", path).Count(&count).Error
	return count, err
}

// ListFilePaths returns the distinct backing files of all books.
func (r *Repository) ListFilePaths() ([]string, error) {
	var paths []string
	err := r.db.Model(&entities.Ebook{}).Distinct("file_path").Pluck("file_path", &paths).Error
	return paths, err
}
