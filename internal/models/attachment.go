package models

import "time"

// FileType is the coarse classification of an uploaded file.
type FileType string

const (
	FileTypeImage       FileType = "image"
	FileTypeAudio       FileType = "audio"
	FileTypePDF         FileType = "pdf"
	FileTypeDocument    FileType = "document"
	FileTypeSpreadsheet FileType = "spreadsheet"
	FileTypeOther       FileType = "other"
)

// FileMeta is the column set shared by every attachment table.
type FileMeta struct {
	Filename     string    `gorm:"not null" json:"filename"`
	FilePath     string    `gorm:"not null" json:"-"`
	FileType     FileType  `gorm:"type:varchar(20);not null" json:"file_type"`
	ContentType  string    `gorm:"type:varchar(100)" json:"content_type"`
	FileSize     int64     `json:"file_size"`
	UploadedByID *uint64   `gorm:"index" json:"uploaded_by_id"`
	UploadedAt   time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

type TaskAttachment struct {
	ID     uint64 `gorm:"primarykey" json:"id"`
	TaskID uint64 `gorm:"not null;index" json:"task_id"`
	FileMeta
}

type NoticeAttachment struct {
	ID       uint64 `gorm:"primarykey" json:"id"`
	NoticeID uint64 `gorm:"not null;index" json:"notice_id"`
	FileMeta
}

type MessageAttachment struct {
	ID        uint64 `gorm:"primarykey" json:"id"`
	MessageID uint64 `gorm:"not null;index" json:"message_id"`
	FileMeta
}
