package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storyhub/internal/settingsstore"
)

// CategorySyncController handles the scheduled category sync settings.
type CategorySyncController struct {
	settings  CategorySyncSettings
	scheduler SyncScheduler
	audit     AuditLog
}

// NewCategorySyncController creates the controller. scheduler and audit may be nil.
func NewCategorySyncController(settings CategorySyncSettings, scheduler SyncScheduler, audit AuditLog) *CategorySyncController {
	return &CategorySyncController{settings: settings, scheduler: scheduler, audit: audit}
}

// CategorySyncSettingsResponse is the response for GET /api/settings/category-sync
type CategorySyncSettingsResponse struct {
	Config    settingsstore.CategorySyncConfigInfo `json:"config"`
	Status    settingsstore.CategorySyncStatus     `json:"status"`
	NextRun   *time.Time                           `json:"next_run,omitempty"`
	IsRunning bool                                 `json:"is_running"`
	Presets   []SchedulePreset                     `json:"presets"`
}

// SchedulePreset is a predefined schedule option
type SchedulePreset struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

var schedulePresets = []SchedulePreset{
	{Label: "Every 30 minutes", Value: "*/30 * * * *", Description: "Runs at :00, :30"},
	{Label: "Every hour", Value: "0 * * * *", Description: "Runs at the top of every hour"},
	{Label: "Every 6 hours", Value: "0 */6 * * *", Description: "Runs at midnight, 6am, noon, 6pm"},
	{Label: "Daily at midnight", Value: "0 0 * * *", Description: "Runs once daily at 00:00"},
	{Label: "Weekly on Sunday", Value: "0 0 * * 0", Description: "Runs every Sunday at midnight"},
}

// GetSettings returns the effective settings, last run status and next run
func (sc *CategorySyncController) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, sc.response())
}

// UpdateCategorySyncRequest is the request body for PUT /api/settings/category-sync
type UpdateCategorySyncRequest struct {
	Enabled  *bool  `json:"enabled"`
	Schedule string `json:"schedule"`
}

// UpdateSettings saves settings and reschedules the sync job
func (sc *CategorySyncController) UpdateSettings(c *gin.Context) {
	var req UpdateCategorySyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if req.Schedule != "" {
		if err := settingsstore.ValidateCronSchedule(req.Schedule); err != nil {
			respondBadRequest(c, "invalid cron schedule: "+err.Error())
			return
		}
		if err := sc.settings.SetCategorySyncSchedule(req.Schedule); err != nil {
			respondInternalError(c, err, "save schedule")
			return
		}
	}

	if req.Enabled != nil {
		if err := sc.settings.SetCategorySyncEnabled(*req.Enabled); err != nil {
			respondInternalError(c, err, "save enabled state")
			return
		}
	}

	if sc.scheduler != nil {
		if err := sc.scheduler.Reschedule(); err != nil {
			respondInternalError(c, err, "reschedule category sync")
			return
		}
	}

	if sc.audit != nil {
		info := sc.settings.GetCategorySyncConfigInfo()
		sc.audit.LogSettings("category_sync_update",
			fmt.Sprintf("Category sync enabled=%t schedule=%q", info.Enabled, info.Schedule))
	}

	c.JSON(http.StatusOK, sc.response())
}

// ResetSettings clears database overrides, reverting to env/defaults
func (sc *CategorySyncController) ResetSettings(c *gin.Context) {
	if err := sc.settings.ClearCategorySyncSettings(); err != nil {
		respondInternalError(c, err, "reset category sync settings")
		return
	}
	if sc.scheduler != nil {
		if err := sc.scheduler.Reschedule(); err != nil {
			respondInternalError(c, err, "reschedule category sync")
			return
		}
	}
	if sc.audit != nil {
		sc.audit.LogSettings("category_sync_reset", "Category sync settings reset to defaults")
	}
	c.JSON(http.StatusOK, sc.response())
}

// SyncNow triggers an immediate sync of every source
func (sc *CategorySyncController) SyncNow(c *gin.Context) {
	if sc.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "scheduler not available"})
		return
	}
	if err := sc.scheduler.RunNow(); err != nil {
		respondInternalError(c, err, "run category sync")
		return
	}
	respondAccepted(c, "category sync started", nil)
}

func (sc *CategorySyncController) response() CategorySyncSettingsResponse {
	resp := CategorySyncSettingsResponse{
		Config:  sc.settings.GetCategorySyncConfigInfo(),
		Status:  sc.settings.GetCategorySyncStatus(),
		Presets: schedulePresets,
	}
	if sc.scheduler != nil {
		resp.NextRun = sc.scheduler.GetNextRunTime()
		resp.IsRunning = sc.scheduler.IsRunning()
	}
	return resp
}
