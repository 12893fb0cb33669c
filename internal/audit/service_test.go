package audit

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditRepo "github.com/mrlokans/storyhub/internal/database/audit"
	"github.com/mrlokans/storyhub/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every goroutine on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	return NewService(auditRepo.NewRepository(db)), db
}

func TestService_Log(t *testing.T) {
	svc, db := setupTestService(t)

	event := &entities.AuditEvent{
		EventType:   entities.AuditEventImport,
		Action:      "test_import",
		Description: "Test import event",
		Status:      entities.AuditStatusSuccess,
	}

	require.NoError(t, svc.Log(event))

	var saved entities.AuditEvent
	require.NoError(t, db.First(&saved, event.ID).Error)
	assert.Equal(t, "test_import", saved.Action)
}

func TestService_LogImport(t *testing.T) {
	svc, db := setupTestService(t)

	t.Run("successful import", func(t *testing.T) {
		svc.LogImport("三体.txt", "book-1", 36, nil)
		svc.Wait()

		var event entities.AuditEvent
		require.NoError(t, db.Where("entity_id = ?", "book-1").First(&event).Error)
		assert.Equal(t, entities.AuditStatusSuccess, event.Status)
		assert.Equal(t, "ebook_import", event.Action)
		assert.Contains(t, event.Metadata, `"chapters":36`)
	})

	t.Run("failed import", func(t *testing.T) {
		svc.LogImport("empty.txt", "", 0, errors.New("no readable text"))
		svc.Wait()

		var event entities.AuditEvent
		require.NoError(t, db.Where("status = ?", entities.AuditStatusFailed).First(&event).Error)
		assert.Equal(t, "no readable text", event.ErrorMsg)
		assert.Contains(t, event.Description, "empty.txt")
	})
}

func TestService_LogShareAndDelete(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogShare("book-1", "book-2", "三体")
	svc.LogDelete("ebook", "book-1", "三体")
	svc.Wait()

	var share entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "ebook_share").First(&share).Error)
	assert.Equal(t, entities.AuditEventShare, share.EventType)
	assert.Equal(t, "book-2", share.EntityID)
	assert.Contains(t, share.Metadata, "book-1")

	var del entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "ebook_delete").First(&del).Error)
	assert.Equal(t, "Deleted ebook: 三体", del.Description)
}

func TestService_LogSync(t *testing.T) {
	svc, _ := setupTestService(t)

	svc.LogSync("vod1", "category_sync", "Synced 22 categories", nil)
	svc.LogSync("vod2", "category_sync", "Sync failed", errors.New("HTTP 502"))
	svc.Wait()

	events, total, err := svc.GetEvents(auditRepo.Filter{EventType: entities.AuditEventSync, EntityID: "vod2"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, entities.AuditStatusFailed, events[0].Status)
	assert.Equal(t, "source", events[0].EntityType)
}

func TestService_LogSettings(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogSettings("category_sync_schedule", "Schedule changed to 0 */6 * * *")
	svc.Wait()

	var event entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "category_sync_schedule").First(&event).Error)
	assert.Equal(t, entities.AuditEventSettings, event.EventType)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, db := setupTestService(t)

	require.NoError(t, db.Create(&entities.AuditEvent{
		EventType: entities.AuditEventImport,
		Action:    "old",
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}).Error)
	require.NoError(t, db.Create(&entities.AuditEvent{
		EventType: entities.AuditEventDelete,
		Action:    "new",
		CreatedAt: time.Now(),
	}).Error)

	deleted, err := svc.DeleteOldEvents(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []entities.AuditEvent
	db.Find(&remaining)
	require.Len(t, remaining, 1)
	assert.Equal(t, "new", remaining[0].Action)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))

	long := strings.Repeat("错", 600)
	got := truncate(long, maxErrorLength)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, maxErrorLength, utf8.RuneCountInString(got))
}
