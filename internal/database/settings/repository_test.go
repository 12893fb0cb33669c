package settings

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/storyhub/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "settings.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Setting{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return NewRepository(db)
}

func TestRepository_SetSetting_New(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.SetSetting(entities.SettingKeyCategorySyncSchedule, "0 */6 * * *"))

	setting, err := repo.GetSetting(entities.SettingKeyCategorySyncSchedule)
	require.NoError(t, err)
	assert.Equal(t, "0 */6 * * *", setting.Value)
}

func TestRepository_SetSetting_Update(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.SetSetting(entities.SettingKeyCategorySyncEnabled, "false"))
	require.NoError(t, repo.SetSetting(entities.SettingKeyCategorySyncEnabled, "true"))

	setting, err := repo.GetSetting(entities.SettingKeyCategorySyncEnabled)
	require.NoError(t, err)
	assert.Equal(t, "true", setting.Value)

	all, err := repo.GetSettingsByPrefix("category_sync_")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRepository_SetSettings(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.SetSettings(map[string]string{
		entities.SettingKeyCategorySyncLastStatus:  "success",
		entities.SettingKeyCategorySyncLastMessage: "synced 3 sources",
		"unrelated": "x",
	}))

	all, err := repo.GetSettingsByPrefix("category_sync_")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, entities.SettingKeyCategorySyncLastMessage, all[0].Key)
	assert.Equal(t, "synced 3 sources", all[0].Value)
}

func TestRepository_GetSetting_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.GetSetting("nonexistent")

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_DeleteSetting(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.SetSetting("to-delete", "value"))
	require.NoError(t, repo.DeleteSetting("to-delete"))

	_, err := repo.GetSetting("to-delete")
	assert.Error(t, err)

	// Should not error even if key doesn't exist
	assert.NoError(t, repo.DeleteSetting("nonexistent"))
}
