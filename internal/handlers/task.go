package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workforce-portal/internal/constants"
	"github.com/yukikurage/workforce-portal/internal/dto"
	apierrors "github.com/yukikurage/workforce-portal/internal/errors"
	"github.com/yukikurage/workforce-portal/internal/middleware"
	"github.com/yukikurage/workforce-portal/internal/services"
)

// importFileField is the multipart field of the bulk import upload.
const importFileField = "file"

// TaskHandler serves the task engine.
type TaskHandler struct {
	taskService   *services.TaskService
	importService *services.ImportService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService, importService *services.ImportService) *TaskHandler {
	return &TaskHandler{
		taskService:   taskService,
		importService: importService,
	}
}

// ListTasks returns the tasks visible to the caller
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListVisible(actor, services.ListTasksInput{
		Priority: c.Query("priority"),
		Status:   c.Query("status"),
	})
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks))
}

// DepartmentOverview lists the tasks of the HOD's department
func (h *TaskHandler) DepartmentOverview(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.DepartmentOverview(actor)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks))
}

// GetTask returns the task loaded by RequireTaskAccess
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.NotFound(c, "Task not found")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a task from JSON or from a multipart form with attachments
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Priority    string   `json:"priority"`
		Status      string   `json:"status"`
		DueDate     string   `json:"due_date"`
		Assignees   []string `json:"assignees"`
	}

	var (
		req     CreateTaskRequest
		uploads []services.Upload
	)

	if isMultipart(c) {
		files, closeFiles, err := formUploads(c)
		if err != nil {
			apierrors.BadRequest(c, "Invalid multipart form")
			return
		}
		defer closeFiles()

		uploads = files
		req = CreateTaskRequest{
			Title:       c.PostForm("title"),
			Description: c.PostForm("description"),
			Priority:    c.PostForm("priority"),
			Status:      c.PostForm("status"),
			DueDate:     c.PostForm("due_date"),
			Assignees:   formList(c, "assignees"),
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var dueDate *time.Time
	if strings.TrimSpace(req.DueDate) != "" {
		d, err := time.Parse(constants.ReportDateLayout, strings.TrimSpace(req.DueDate))
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_date format (use YYYY-MM-DD)")
			return
		}
		dueDate = &d
	}

	task, err := h.taskService.CreateTask(actor, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		DueDate:     dueDate,
		Assignees:   req.Assignees,
		Attachments: uploads,
	})
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateStatus changes a task's status
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	taskID, ok := idParam(c, "id")
	if !ok {
		return
	}

	type UpdateStatusRequest struct {
		Status string `json:"status" binding:"required"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateStatus(actor, taskID, req.Status)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdatePriority changes a task's priority
func (h *TaskHandler) UpdatePriority(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	taskID, ok := idParam(c, "id")
	if !ok {
		return
	}

	type UpdatePriorityRequest struct {
		Priority string `json:"priority" binding:"required"`
	}

	var req UpdatePriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdatePriority(actor, taskID, req.Priority)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task with its assignments and attachments
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	taskID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(actor, taskID); err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// DownloadAttachment streams a task attachment
func (h *TaskHandler) DownloadAttachment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	taskID, ok := idParam(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := idParam(c, "attachment_id")
	if !ok {
		return
	}

	blob, err := h.taskService.OpenAttachment(actor, taskID, attachmentID)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	sendBlob(c, blob)
}

// ImportTasks creates tasks from an uploaded CSV or XLSX file. Rejected rows
// are reported alongside the created ids; a file with no usable row is a 400.
func (h *TaskHandler) ImportTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	fh, err := c.FormFile(importFileField)
	if err != nil {
		apierrors.BadRequest(c, "A file upload is required")
		return
	}

	f, err := fh.Open()
	if err != nil {
		apierrors.BadRequest(c, "Could not read the uploaded file")
		return
	}
	defer f.Close()

	result, err := h.importService.ImportTasks(actor, fh.Filename, f)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	if len(result.Created) == 0 {
		apierrors.BadRequestWithDetails(c, "No tasks were imported", result.Errors)
		return
	}

	c.JSON(http.StatusCreated, result)
}
