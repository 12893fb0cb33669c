package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storyhub/internal/categories"
	"github.com/mrlokans/storyhub/internal/metrics"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Route groups whose collaborators are nil in cfg are not registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())

	if cfg.Metrics != nil {
		router.Use(MetricsMiddleware(cfg.Metrics))
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", Ping)

	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(cfg.Gatherer)))
	}

	api := router.Group("/api")
	api.Use(ReadOnlyMiddleware(cfg.ReadOnly))

	// Sources and their field mappings
	if cfg.Sources != nil {
		sourcesController := NewSourcesController(cfg.Sources)
		api.GET("/sources", sourcesController.ListSources)
		api.POST("/sources", sourcesController.SaveSource)
		api.GET("/sources/:namespace", sourcesController.GetSource)
		api.DELETE("/sources/:namespace", sourcesController.DeleteSource)
		api.GET("/sources/:namespace/items", sourcesController.ListItems)

		mappingsController := NewMappingsController(cfg.Sources)
		api.PUT("/sources/:namespace/content-type", mappingsController.SetContentType)
		api.POST("/sources/:namespace/mappings", mappingsController.AddMapping)
		api.PUT("/sources/:namespace/mappings/:index", mappingsController.UpdateMapping)
		api.DELETE("/sources/:namespace/mappings/:index", mappingsController.DeleteMapping)
		api.POST("/mappings/apply", mappingsController.Apply)
		api.GET("/mappings/templates/:type", mappingsController.GetTemplate)
	}

	// Category trees
	taxonomy := categories.DefaultTaxonomy()
	if cfg.Taxonomy != nil {
		taxonomy = *cfg.Taxonomy
	}
	categoriesController := NewCategoriesController(cfg.Categories, taxonomy)
	api.POST("/categories/reconcile", categoriesController.Reconcile)
	if cfg.Categories != nil {
		api.POST("/sources/:namespace/categories/sync", categoriesController.SyncCategories)
		api.GET("/sources/:namespace/categories", categoriesController.GetCategories)
	}

	// E-books
	if cfg.Ebooks != nil && cfg.EbookReader != nil {
		var recorder ImportRecorder
		if cfg.Metrics != nil {
			recorder = cfg.Metrics
		}
		ebooksController := NewEbooksController(cfg.Ebooks, cfg.EbookReader, cfg.AuditLog, recorder, cfg.MaxUploadBytes)
		api.POST("/ebooks", ebooksController.Import)
		api.GET("/ebooks", ebooksController.ListEbooks)
		api.GET("/ebooks/:id", ebooksController.GetEbook)
		api.GET("/ebooks/:id/chapters", ebooksController.GetChapters)
		api.GET("/ebooks/:id/chapters/:index", ebooksController.GetChapter)
		api.PATCH("/ebooks/:id/progress", ebooksController.UpdateProgress)
		api.POST("/ebooks/:id/share", ebooksController.ShareEbook)
		api.DELETE("/ebooks/:id", ebooksController.DeleteEbook)
	}

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/:type/run", tasksController.RunTask)
	}

	// Scheduled category sync settings
	if cfg.SyncSettings != nil {
		syncController := NewCategorySyncController(cfg.SyncSettings, cfg.SyncScheduler, cfg.AuditLog)
		api.GET("/settings/category-sync", syncController.GetSettings)
		api.PUT("/settings/category-sync", syncController.UpdateSettings)
		api.POST("/settings/category-sync/reset", syncController.ResetSettings)
		api.POST("/settings/category-sync/run", syncController.SyncNow)
	}

	if cfg.AuditLog != nil {
		auditController := NewAuditController(cfg.AuditLog)
		api.GET("/audit", auditController.GetAuditEvents)
		api.GET("/audit/types", auditController.GetEventTypes)
		api.GET("/audit/:id", auditController.GetAuditEvent)
	}

	return router
}

// HTTPRecorder is implemented by metrics.Collector.
type HTTPRecorder interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
}

// MetricsMiddleware records the status and latency of every request under
// its route template. Unmatched routes are recorded as "unmatched".
func MetricsMiddleware(recorder HTTPRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		recorder.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
