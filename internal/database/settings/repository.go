// Package settings provides database operations for application settings.
//
// # Usage
//
//	repo := settings.NewRepository(db)
//	setting, err := repo.GetSetting(entities.SettingKeyCategorySyncSchedule)
package settings

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/storyhub/internal/entities"
)

// Repository handles all settings database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new settings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetSetting retrieves a setting by key.
func (r *Repository) GetSetting(key string) (*entities.Setting, error) {
	var setting entities.Setting
	err := r.db.Where("key = ?", key).First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// GetSettingsByPrefix returns every setting whose key starts with prefix.
func (r *Repository) GetSettingsByPrefix(prefix string) ([]entities.Setting, error) {
	var settings []entities.Setting
	err := r.db.Where("key LIKE ?", prefix+"%").Order("key ASC").Find(&settings).Error
	return settings, err
}

// SetSetting creates or updates a setting.
func (r *Repository) SetSetting(key, value string) error {
	return upsert(r.db, key, value)
}

// SetSettings writes several settings in one transaction.
func (r *Repository) SetSettings(values map[string]string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for key, value := range values {
			if err := upsert(tx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteSetting removes a setting by key.
func (r *Repository) DeleteSetting(key string) error {
	return r.db.Where("key = ?", key).Delete(&entities.Setting{}).Error
}

func upsert(db *gorm.DB, key, value string) error {
	setting := entities.Setting{Key: key, Value: value}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
}
