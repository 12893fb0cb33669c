package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storyhub/internal/entities"
	"github.com/mrlokans/storyhub/internal/mapping"
)

var errInvalidEdit = errors.New("invalid edit")

// MappingsController edits the content type configuration of a source and
// previews mappings against sample records.
type MappingsController struct {
	sources SourceService
}

func NewMappingsController(sources SourceService) *MappingsController {
	return &MappingsController{sources: sources}
}

// SetContentType switches the content type, replacing the rows with its template
// PUT /api/sources/:namespace/content-type
func (mc *MappingsController) SetContentType(c *gin.Context) {
	var req struct {
		ContentType      string `json:"content_type" binding:"required"`
		DetailScreenType string `json:"detail_screen_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "content_type is required")
		return
	}

	ct, err := mapping.ParseContentType(req.ContentType)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	var screen entities.DetailScreenType
	if req.DetailScreenType != "" {
		if screen, err = mapping.ParseDetailScreenType(req.DetailScreenType); err != nil {
			respondBadRequest(c, err.Error())
			return
		}
	}

	mc.edit(c, func(e *mapping.Editor) error {
		if err := e.SelectContentType(ct); err != nil {
			return fmt.Errorf("%w: %v", errInvalidEdit, err)
		}
		if screen != "" {
			return e.SetDetailScreen(screen)
		}
		return nil
	})
}

// AddMapping appends a mapping row
// POST /api/sources/:namespace/mappings
func (mc *MappingsController) AddMapping(c *gin.Context) {
	var row entities.FieldMapping
	if err := c.ShouldBindJSON(&row); err != nil {
		respondBadRequest(c, "invalid mapping")
		return
	}

	mc.edit(c, func(e *mapping.Editor) error {
		e.AddMapping(row)
		return nil
	})
}

// UpdateMapping replaces the mapping row at index
// PUT /api/sources/:namespace/mappings/:index
func (mc *MappingsController) UpdateMapping(c *gin.Context) {
	index, ok := parseIntParam(c, "index")
	if !ok {
		return
	}
	var row entities.FieldMapping
	if err := c.ShouldBindJSON(&row); err != nil {
		respondBadRequest(c, "invalid mapping")
		return
	}

	mc.edit(c, func(e *mapping.Editor) error {
		return e.UpdateMapping(index, row)
	})
}

// DeleteMapping removes the mapping row at index
// DELETE /api/sources/:namespace/mappings/:index
func (mc *MappingsController) DeleteMapping(c *gin.Context) {
	index, ok := parseIntParam(c, "index")
	if !ok {
		return
	}

	mc.edit(c, func(e *mapping.Editor) error {
		return e.DeleteMapping(index)
	})
}

func (mc *MappingsController) edit(c *gin.Context, fn func(*mapping.Editor) error) {
	result, err := mc.sources.EditConfig(c.Request.Context(), c.Param("namespace"), fn)
	if errors.Is(err, errInvalidEdit) {
		respondBadRequest(c, err.Error())
		return
	}
	if err != nil {
		respondSaveError(c, err, "edit mappings")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ApplyRequest previews mappings against a single record or a whole envelope.
// Mappings default to the template of ContentType when omitted.
type ApplyRequest struct {
	ContentType  string                  `json:"content_type"`
	Mappings     []entities.FieldMapping `json:"mappings"`
	Record       map[string]any          `json:"record"`
	Envelope     any                     `json:"envelope"`
	ResponsePath string                  `json:"response_path"`
}

// Apply runs mappings without storing anything
// POST /api/mappings/apply
func (mc *MappingsController) Apply(c *gin.Context) {
	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	rows := req.Mappings
	if len(rows) == 0 {
		if req.ContentType == "" {
			respondBadRequest(c, "mappings or content_type is required")
			return
		}
		ct, err := mapping.ParseContentType(req.ContentType)
		if err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		tpl, ok := mc.sources.Templates().For(ct)
		if !ok {
			respondBadRequest(c, fmt.Sprintf("no template for content type %s", ct))
			return
		}
		rows = tpl.Mappings
	}

	problems := mapping.Validate(mapping.Config{ContentType: entities.ContentTypeCustom, FieldMappings: rows})

	if req.Envelope != nil {
		records, err := mapping.ExtractList(req.Envelope, req.ResponsePath)
		if err != nil {
			respondUnprocessable(c, err.Error(), nil)
			return
		}
		results := make([]mapping.Result, len(records))
		for i, r := range records {
			results[i] = mapping.Apply(r, rows)
		}
		c.JSON(http.StatusOK, gin.H{"results": results, "problems": problems})
		return
	}

	if req.Record == nil {
		respondBadRequest(c, "record or envelope is required")
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": mapping.Apply(req.Record, rows), "problems": problems})
}

// GetTemplate returns the built-in mappings of a content type
// GET /api/mappings/templates/:type
func (mc *MappingsController) GetTemplate(c *gin.Context) {
	ct, err := mapping.ParseContentType(c.Param("type"))
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	tpl, ok := mc.sources.Templates().For(ct)
	if !ok {
		respondNotFound(c, "template")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"content_type":       ct,
		"detail_screen_type": tpl.DetailScreen,
		"mappings":           tpl.Mappings,
	})
}
