package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storyhub/internal/entities"
	"github.com/mrlokans/storyhub/internal/mapping"
	"github.com/mrlokans/storyhub/internal/sources"
)

type SourcesController struct {
	sources SourceService
}

func NewSourcesController(sources SourceService) *SourcesController {
	return &SourcesController{sources: sources}
}

// SourceRequest is the body accepted by POST /api/sources.
// Content type and detail screen names are case-insensitive.
type SourceRequest struct {
	Namespace            string                  `json:"namespace" binding:"required"`
	Name                 string                  `json:"name"`
	BaseURL              string                  `json:"base_url" binding:"required"`
	CategoryPath         string                  `json:"category_path"`
	ListPath             string                  `json:"list_path"`
	RemoteConfigURL      string                  `json:"remote_config_url"`
	ContentType          string                  `json:"content_type"`
	DetailScreenType     string                  `json:"detail_screen_type"`
	ListResponsePath     string                  `json:"list_response_path"`
	CategoryResponsePath string                  `json:"category_response_path"`
	DetailResponsePath   string                  `json:"detail_response_path"`
	SearchResponsePath   string                  `json:"search_response_path"`
	FieldMappings        []entities.FieldMapping `json:"field_mappings"`
}

func (r SourceRequest) toSource(templates mapping.Templates) (*entities.ContentSource, error) {
	src := &entities.ContentSource{
		Namespace:            r.Namespace,
		Name:                 r.Name,
		BaseURL:              r.BaseURL,
		CategoryPath:         r.CategoryPath,
		ListPath:             r.ListPath,
		RemoteConfigURL:      r.RemoteConfigURL,
		ListResponsePath:     r.ListResponsePath,
		CategoryResponsePath: r.CategoryResponsePath,
		DetailResponsePath:   r.DetailResponsePath,
		SearchResponsePath:   r.SearchResponsePath,
		FieldMappings:        r.FieldMappings,
		ContentType:          entities.ContentTypeMovie,
	}

	if r.ContentType != "" {
		ct, err := mapping.ParseContentType(r.ContentType)
		if err != nil {
			return nil, err
		}
		src.ContentType = ct
	}
	if r.DetailScreenType != "" {
		screen, err := mapping.ParseDetailScreenType(r.DetailScreenType)
		if err != nil {
			return nil, err
		}
		src.DetailScreenType = screen
	}

	// Without explicit rows a source starts from its content type template.
	if len(src.FieldMappings) == 0 {
		cfg := mapping.ConfigFromSource(src)
		editor := mapping.NewEditor(&cfg, templates)
		if err := editor.SelectContentType(src.ContentType); err != nil {
			return nil, err
		}
		if r.DetailScreenType != "" {
			cfg.DetailScreenType = src.DetailScreenType
		}
		cfg.ApplyTo(src)
	}
	return src, nil
}

// ListSources returns every configured source
// GET /api/sources
func (sc *SourcesController) ListSources(c *gin.Context) {
	list, err := sc.sources.ListSources()
	if err != nil {
		respondInternalError(c, err, "list sources")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sources": list, "count": len(list)})
}

// SaveSource creates or replaces a source
// POST /api/sources
func (sc *SourcesController) SaveSource(c *gin.Context) {
	var req SourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "namespace and base_url are required")
		return
	}

	src, err := req.toSource(sc.sources.Templates())
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result, err := sc.sources.SaveSource(c.Request.Context(), src)
	if err != nil {
		respondSaveError(c, err, "save source")
		return
	}
	respondCreated(c, result)
}

// GetSource returns one source with its mappings
// GET /api/sources/:namespace
func (sc *SourcesController) GetSource(c *gin.Context) {
	src, err := sc.sources.GetSource(c.Param("namespace"))
	if errors.Is(err, sources.ErrSourceNotFound) {
		respondNotFound(c, "source")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get source")
		return
	}
	c.JSON(http.StatusOK, src)
}

// DeleteSource removes a source and its categories
// DELETE /api/sources/:namespace
func (sc *SourcesController) DeleteSource(c *gin.Context) {
	err := sc.sources.DeleteSource(c.Param("namespace"))
	if errors.Is(err, sources.ErrSourceNotFound) {
		respondNotFound(c, "source")
		return
	}
	if err != nil {
		respondInternalError(c, err, "delete source")
		return
	}
	respondSuccess(c, "source deleted")
}

// ListItems fetches one page of items and maps them
// GET /api/sources/:namespace/items?page=1&type=0
func (sc *SourcesController) ListItems(c *gin.Context) {
	page, ok := parseQueryInt(c, "page", 1)
	if !ok {
		return
	}
	typeID, ok := parseQueryInt(c, "type", 0)
	if !ok {
		return
	}

	items, err := sc.sources.ListItems(c.Request.Context(), c.Param("namespace"), page, typeID)
	if errors.Is(err, sources.ErrSourceNotFound) {
		respondNotFound(c, "source")
		return
	}
	if err != nil {
		respondBadGateway(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, items)
}

func respondSaveError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, sources.ErrSourceNotFound):
		respondNotFound(c, "source")
	case errors.Is(err, sources.ErrInvalidSource):
		respondBadRequest(c, err.Error())
	case errors.Is(err, mapping.ErrIndexOutOfRange):
		respondNotFound(c, "mapping")
	default:
		respondInternalError(c, err, context)
	}
}
