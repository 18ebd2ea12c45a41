package dto

import (
	"time"

	"github.com/yukikurage/workforce-portal/internal/models"
)

// AttachmentDTO represents a stored file in API responses
type AttachmentDTO struct {
	ID          uint64          `json:"id"`
	Filename    string          `json:"filename"`
	FileType    models.FileType `json:"file_type"`
	ContentType string          `json:"content_type"`
	FileSize    int64           `json:"file_size"`
	UploadedAt  time.Time       `json:"uploaded_at"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	Status      models.TaskStatus   `json:"status"`
	DueDate     *time.Time          `json:"due_date"`
	CompletedAt *time.Time          `json:"completed_at"`
	CreatedAt   time.Time           `json:"created_at"`
	CreatedBy   *UserSummaryDTO     `json:"created_by,omitempty"`
	Assignees   []UserSummaryDTO    `json:"assignees"`
	Attachments []AttachmentDTO     `json:"attachments"`
}

// TaskListResponse represents a list of tasks in visibility order
type TaskListResponse struct {
	Tasks []TaskDTO `json:"tasks"`
	Count int       `json:"count"`
}

// ToAttachmentDTO converts attachment metadata to AttachmentDTO
func ToAttachmentDTO(id uint64, meta models.FileMeta) AttachmentDTO {
	return AttachmentDTO{
		ID:          id,
		Filename:    meta.Filename,
		FileType:    meta.FileType,
		ContentType: meta.ContentType,
		FileSize:    meta.FileSize,
		UploadedAt:  meta.UploadedAt,
	}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      task.Status,
		DueDate:     task.DueDate,
		CompletedAt: task.CompletedAt,
		CreatedAt:   task.CreatedAt,
		Assignees:   make([]UserSummaryDTO, 0, len(task.Assignments)),
		Attachments: make([]AttachmentDTO, 0, len(task.Attachments)),
	}

	// Include creator if preloaded and not deleted
	if task.CreatedBy != nil {
		creator := ToUserSummaryDTO(*task.CreatedBy)
		dto.CreatedBy = &creator
	}

	for _, assignment := range task.Assignments {
		dto.Assignees = append(dto.Assignees, ToUserSummaryDTO(assignment.User))
	}
	for _, att := range task.Attachments {
		dto.Attachments = append(dto.Attachments, ToAttachmentDTO(att.ID, att.FileMeta))
	}

	return dto
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Tasks: items,
		Count: len(items),
	}
}
