// Package categories stores the reconciled category set of each content
// source namespace.
//
// # Usage
//
//	repo := categories.NewRepository(db)
//	err := repo.ReplaceNamespace("vod1", reconciled)
//	top, err := repo.GetTopLevel("vod1")
package categories

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/storyhub/internal/entities"
)

const insertBatchSize = 200

// Repository handles category database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new categories repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ReplaceNamespace swaps the whole category set of a namespace in one
// transaction. Rows keep their input order through Position.
func (r *Repository) ReplaceNamespace(namespace string, cats []entities.Category) error {
	rows := make([]entities.Category, len(cats))
	for i, c := range cats {
		rows[i] = entities.Category{
			Namespace:    namespace,
			TypeID:       c.TypeID,
			TypeName:     c.TypeName,
			ParentTypeID: c.ParentTypeID,
			Position:     i,
		}
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("namespace = ?", namespace).Delete(&entities.Category{}).Error; err != nil {
			return fmt.Errorf("failed to clear categories for %s: %w", namespace, err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&rows, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert categories for %s: %w", namespace, err)
		}
		return nil
	})
}

// GetAll returns the stored set of a namespace in stored order.
func (r *Repository) GetAll(namespace string) ([]entities.Category, error) {
	var cats []entities.Category
	err := r.db.Where("namespace = ?", namespace).Order("position ASC").Find(&cats).Error
	return cats, err
}

// GetTopLevel returns the rows without a parent, "All" included.
func (r *Repository) GetTopLevel(namespace string) ([]entities.Category, error) {
	var cats []entities.Category
	err := r.db.Where("namespace = ? AND parent_type_id = 0", namespace).
		Order("position ASC").Find(&cats).Error
	return cats, err
}

// GetChildren returns the rows under parentID. Parent 0 has no children.
func (r *Repository) GetChildren(namespace string, parentID int) ([]entities.Category, error) {
	cats := make([]entities.Category, 0)
	if parentID == 0 {
		return cats, nil
	}
	err := r.db.Where("namespace = ? AND parent_type_id = ?", namespace, parentID).
		Order("position ASC").Find(&cats).Error
	return cats, err
}
