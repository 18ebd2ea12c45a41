package dto

import (
	"time"

	"github.com/yukikurage/workforce-portal/internal/models"
)

// NoticeDTO represents a notice board entry
type NoticeDTO struct {
	ID          uint64          `json:"id"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	IsActive    bool            `json:"is_active"`
	Author      string          `json:"author"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Attachments []AttachmentDTO `json:"attachments"`
}

// ToNoticeDTO converts a Notice model to NoticeDTO
func ToNoticeDTO(notice models.Notice) NoticeDTO {
	dto := NoticeDTO{
		ID:          notice.ID,
		Title:       notice.Title,
		Content:     notice.Content,
		IsActive:    notice.IsActive,
		Author:      deletedUser,
		CreatedAt:   notice.CreatedAt,
		UpdatedAt:   notice.UpdatedAt,
		Attachments: make([]AttachmentDTO, 0, len(notice.Attachments)),
	}
	if notice.CreatedBy != nil {
		dto.Author = notice.CreatedBy.DisplayName()
	}
	for _, att := range notice.Attachments {
		dto.Attachments = append(dto.Attachments, ToAttachmentDTO(att.ID, att.FileMeta))
	}
	return dto
}

// ToNoticeDTOs converts a slice of notices
func ToNoticeDTOs(notices []models.Notice) []NoticeDTO {
	items := make([]NoticeDTO, len(notices))
	for i, n := range notices {
		items[i] = ToNoticeDTO(n)
	}
	return items
}
