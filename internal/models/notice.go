package models

import "time"

type Notice struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	CreatedByID *uint64   `gorm:"index" json:"created_by_id"`
	IsActive    bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	CreatedBy   *User              `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL" json:"created_by,omitempty"`
	Attachments []NoticeAttachment `gorm:"foreignKey:NoticeID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
}
