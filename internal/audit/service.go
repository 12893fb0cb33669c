package audit

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/storyhub/internal/database/audit"
	"github.com/mrlokans/storyhub/internal/entities"
)

const maxErrorLength = 500

// EventRepository persists audit events.
// Implemented by database/audit.Repository.
type EventRepository interface {
	LogEvent(event *entities.AuditEvent) error
	GetEvents(filter audit.Filter, limit, offset int) ([]entities.AuditEvent, int64, error)
	DeleteOldEvents(olderThan time.Time) (int64, error)
	GetEventByID(id uint) (*entities.AuditEvent, error)
}

// Service provides high-level audit logging functionality.
type Service struct {
	repo    EventRepository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo EventRepository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until every event handed to LogAsync has been written.
func (s *Service) Wait() {
	s.pending.Wait()
}

// LogImport records an e-book import. bookID is empty when the import failed.
func (s *Service) LogImport(displayName, bookID string, chapters int, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventImport,
		Action:      "ebook_import",
		Description: "Imported " + displayName,
		EntityType:  "ebook",
		EntityID:    bookID,
		Metadata:    metadata(map[string]any{"file": displayName, "chapters": chapters}),
	}
	s.LogAsync(withOutcome(event, err))
}

// LogShare records a book being shared as a new copy.
func (s *Service) LogShare(sourceID, copyID, title string) {
	s.LogAsync(&entities.AuditEvent{
		EventType:   entities.AuditEventShare,
		Action:      "ebook_share",
		Description: "Shared " + title,
		EntityType:  "ebook",
		EntityID:    copyID,
		Metadata:    metadata(map[string]any{"source_id": sourceID}),
		Status:      entities.AuditStatusSuccess,
	})
}

// LogDelete records a deletion event.
func (s *Service) LogDelete(entityType, entityID, entityName string) {
	s.LogAsync(&entities.AuditEvent{
		EventType:   entities.AuditEventDelete,
		Action:      entityType + "_delete",
		Description: "Deleted " + entityType + ": " + entityName,
		EntityType:  entityType,
		EntityID:    entityID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogSync records a category sync of one namespace.
func (s *Service) LogSync(namespace, action, description string, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventSync,
		Action:      action,
		Description: description,
		EntityType:  "source",
		EntityID:    namespace,
	}
	s.LogAsync(withOutcome(event, err))
}

// LogSettings records a settings change event.
func (s *Service) LogSettings(action, description string) {
	s.LogAsync(&entities.AuditEvent{
		EventType:   entities.AuditEventSettings,
		Action:      action,
		Description: description,
		Status:      entities.AuditStatusSuccess,
	})
}

// GetEvents retrieves paginated audit events.
// GetEvent returns one event. A missing id yields gorm.ErrRecordNotFound.
func (s *Service) GetEvent(id uint) (*entities.AuditEvent, error) {
	return s.repo.GetEventByID(id)
}

func (s *Service) GetEvents(filter audit.Filter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(filter, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

func withOutcome(event *entities.AuditEvent, err error) *entities.AuditEvent {
	event.Status = entities.AuditStatusSuccess
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), maxErrorLength)
	}
	return event
}

func metadata(m map[string]any) string {
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(b)
}

// truncate shortens a string to at most maxLen runes.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
