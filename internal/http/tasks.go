package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/storyhub/internal/tasks"
)

// TasksController handles task queue management endpoints.
type TasksController struct {
	client *tasks.Client
}

// NewTasksController creates a new TasksController.
func NewTasksController(client *tasks.Client) *TasksController {
	return &TasksController{client: client}
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

var taskTypes = []TaskTypeInfo{
	{
		Type:        "sync_categories",
		Description: "Refresh the category tree of one source (requires namespace)",
		Queue:       tasks.SyncCategoriesTask{}.Config().Name,
	},
	{
		Type:        "sync_all_categories",
		Description: "Refresh the category trees of all sources",
		Queue:       tasks.SyncAllCategoriesTask{}.Config().Name,
	},
	{
		Type:        "cleanup_audit_events",
		Description: "Remove old audit events and captured responses",
		Queue:       tasks.CleanupAuditEventsTask{}.Config().Name,
	},
	{
		Type:        "cleanup_orphan_files",
		Description: "Remove stored e-book files no book refers to",
		Queue:       tasks.CleanupOrphanFilesTask{}.Config().Name,
	},
}

// ListTaskTypes handles GET /api/tasks/types
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"task_types": taskTypes})
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.client.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// RunTaskRequest is the request body for running a task.
type RunTaskRequest struct {
	Namespace     string `json:"namespace,omitempty"`
	RetentionDays int    `json:"retention_days,omitempty"`
	GraceMinutes  int    `json:"grace_minutes,omitempty"`
}

// RunTask handles POST /api/tasks/:type/run
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")

	var req RunTaskRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	var task backlite.Task
	switch taskType {
	case "sync_categories":
		namespace := strings.TrimSpace(req.Namespace)
		if namespace == "" {
			respondBadRequest(c, "namespace is required for sync_categories task")
			return
		}
		task = tasks.SyncCategoriesTask{Namespace: namespace}

	case "sync_all_categories":
		task = tasks.SyncAllCategoriesTask{Trigger: "manual"}

	case "cleanup_audit_events":
		task = tasks.CleanupAuditEventsTask{RetentionDays: req.RetentionDays}

	case "cleanup_orphan_files":
		task = tasks.CleanupOrphanFilesTask{GraceMinutes: req.GraceMinutes}

	default:
		respondBadRequest(c, fmt.Sprintf("unknown task type: %s", taskType))
		return
	}

	ids, err := tc.client.Add(task).Save()
	if err != nil {
		respondInternalError(c, err, "enqueue "+taskType)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task_id": ids[0],
		"type":    taskType,
		"message": "task enqueued",
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
