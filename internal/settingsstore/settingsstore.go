// Package settingsstore resolves runtime settings that can be changed without
// a restart. Priority: database > environment > default.
package settingsstore

import (
	"errors"
	"os"

	"gorm.io/gorm"

	"github.com/mrlokans/storyhub/internal/entities"
)

// Where a resolved value came from.
const (
	SourceDatabase    = "database"
	SourceEnvironment = "environment"
	SourceDefault     = "default"
)

// SettingsRepository is the persistence the store reads and writes.
// Implemented by database/settings.Repository.
type SettingsRepository interface {
	GetSetting(key string) (*entities.Setting, error)
	SetSetting(key, value string) error
	SetSettings(values map[string]string) error
	DeleteSetting(key string) error
}

type SettingsStore struct {
	repo SettingsRepository
}

func New(repo SettingsRepository) *SettingsStore {
	return &SettingsStore{repo: repo}
}

// resolve looks key up in the database, then envVar, then falls back to def.
func (s *SettingsStore) resolve(key, envVar, def string) (string, string) {
	setting, err := s.repo.GetSetting(key)
	if err == nil && setting.Value != "" {
		return setting.Value, SourceDatabase
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		return envVal, SourceEnvironment
	}
	return def, SourceDefault
}

func (s *SettingsStore) stored(key string) string {
	setting, err := s.repo.GetSetting(key)
	if err != nil {
		return ""
	}
	return setting.Value
}

func (s *SettingsStore) clear(keys ...string) error {
	for _, key := range keys {
		if err := s.repo.DeleteSetting(key); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	return nil
}

func parseBool(v string) bool {
	return v == "true" || v == "1"
}
