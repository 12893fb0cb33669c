package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storyhub/internal/categories"
	"github.com/mrlokans/storyhub/internal/entities"
)

type CategoriesController struct {
	service  CategoryService
	taxonomy categories.Taxonomy
}

func NewCategoriesController(service CategoryService, taxonomy categories.Taxonomy) *CategoriesController {
	return &CategoriesController{service: service, taxonomy: taxonomy}
}

// SyncCategories refreshes the category tree of one source
// POST /api/sources/:namespace/categories/sync
func (cc *CategoriesController) SyncCategories(c *gin.Context) {
	result := cc.service.SyncCategories(c.Request.Context(), c.Param("namespace"))
	if !result.Success {
		c.JSON(http.StatusBadGateway, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetCategories returns the stored tree, the top level or the children of one parent
// GET /api/sources/:namespace/categories?top=1|parent=ID
func (cc *CategoriesController) GetCategories(c *gin.Context) {
	namespace := c.Param("namespace")

	var (
		cats []entities.Category
		err  error
	)
	switch {
	case c.Query("parent") != "":
		parentID, perr := strconv.Atoi(c.Query("parent"))
		if perr != nil {
			respondBadRequest(c, "invalid parent")
			return
		}
		cats, err = cc.service.GetChildCategories(namespace, parentID)
	case isTruthy(c.Query("top")):
		cats, err = cc.service.GetTopLevelCategories(namespace)
	default:
		cats, err = cc.service.GetCategories(namespace)
	}

	if err != nil {
		respondInternalError(c, err, "get categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"namespace": namespace, "categories": cats, "count": len(cats)})
}

// Reconcile previews the merge of a raw category list without storing it
// POST /api/categories/reconcile
func (cc *CategoriesController) Reconcile(c *gin.Context) {
	var req struct {
		Categories []entities.Category `json:"categories"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	result := categories.Reconcile(req.Categories, cc.taxonomy)
	c.JSON(http.StatusOK, gin.H{"categories": result, "count": len(result)})
}

func isTruthy(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
