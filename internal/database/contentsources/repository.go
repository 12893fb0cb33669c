// Package contentsources provides database operations for content sources
// and their ordered field mappings.
//
// # Usage
//
//	repo := contentsources.NewRepository(db)
//	err := repo.Save(&entities.ContentSource{Namespace: "vod1", BaseURL: "https://..."})
//	src, err := repo.GetByNamespace("vod1")
package contentsources

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/storyhub/internal/entities"
)

// Repository handles content source database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new content sources repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save upserts a source by namespace. The stored mapping rows are replaced
// by src.FieldMappings in the same transaction, keeping slice order.
func (r *Repository) Save(src *entities.ContentSource) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing entities.ContentSource
		err := tx.Where("namespace = ?", src.Namespace).First(&existing).Error
		switch {
		case err == nil:
			src.ID = existing.ID
			src.CreatedAt = existing.CreatedAt
		case err == gorm.ErrRecordNotFound:
			src.ID = 0
		default:
			return err
		}

		mappings := src.FieldMappings
		if err := tx.Omit("FieldMappings").Save(src).Error; err != nil {
			return fmt.Errorf("failed to save source %s: %w", src.Namespace, err)
		}

		if err := tx.Where("source_id = ?", src.ID).Delete(&entities.FieldMapping{}).Error; err != nil {
			return fmt.Errorf("failed to clear mappings of %s: %w", src.Namespace, err)
		}

		for i := range mappings {
			mappings[i].ID = 0
			mappings[i].SourceID = src.ID
			mappings[i].Position = i
		}
		if len(mappings) > 0 {
			if err := tx.Create(&mappings).Error; err != nil {
				return fmt.Errorf("failed to save mappings of %s: %w", src.Namespace, err)
			}
		}
		src.FieldMappings = mappings
		return nil
	})
}

// GetByNamespace retrieves a source with its mappings in order.
func (r *Repository) GetByNamespace(namespace string) (*entities.ContentSource, error) {
	var src entities.ContentSource
	err := r.withMappings(r.db).Where("namespace = ?", namespace).First(&src).Error
	if err != nil {
		return nil, err
	}
	return &src, nil
}

// List returns every source ordered by namespace.
func (r *Repository) List() ([]entities.ContentSource, error) {
	var sources []entities.ContentSource
	err := r.withMappings(r.db).Order("namespace ASC").Find(&sources).Error
	return sources, err
}

// Delete removes a source, its mappings and its stored categories.
func (r *Repository) Delete(namespace string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var src entities.ContentSource
		if err := tx.Where("namespace = ?", namespace).First(&src).Error; err != nil {
			return err
		}
		if err := tx.Where("source_id = ?", src.ID).Delete(&entities.FieldMapping{}).Error; err != nil {
			return err
		}
		if err := tx.Where("namespace = ?", namespace).Delete(&entities.Category{}).Error; err != nil {
			return err
		}
		return tx.Delete(&src).Error
	})
}

func (r *Repository) withMappings(db *gorm.DB) *gorm.DB {
	return db.Preload("FieldMappings", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}
