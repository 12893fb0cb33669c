package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/storyhub/internal/database/audit"
	"github.com/mrlokans/storyhub/internal/entities"
)

type AuditController struct {
	log AuditLog
}

func NewAuditController(log AuditLog) *AuditController {
	return &AuditController{log: log}
}

// GetAuditEvents returns paginated audit events as JSON
// GET /api/audit?type=&entity_type=&entity_id=&page=&limit=
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	page, limit := parsePagination(c, 25, 100)
	offset := (page - 1) * limit

	filter := audit.Filter{
		EventType:  entities.AuditEventType(c.Query("type")),
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
	}

	events, total, err := ac.log.GetEvents(filter, limit, offset)
	if err != nil {
		respondInternalError(c, err, "get audit events")
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       events,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    int64(offset+len(events)) < total,
		TotalPages: totalPages,
	})
}

// GetAuditEvent returns a single event
// GET /api/audit/:id
func (ac *AuditController) GetAuditEvent(c *gin.Context) {
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}

	event, err := ac.log.GetEvent(uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "audit event")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get audit event")
		return
	}
	c.JSON(http.StatusOK, event)
}

// GetEventTypes lists the filterable event types
// GET /api/audit/types
func (ac *AuditController) GetEventTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"event_types": []entities.AuditEventType{
		entities.AuditEventImport,
		entities.AuditEventShare,
		entities.AuditEventDelete,
		entities.AuditEventSync,
		entities.AuditEventSettings,
	}})
}
