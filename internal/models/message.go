package models

import "time"

type Message struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	ConversationID uint64    `gorm:"not null;index" json:"conversation_id"`
	SenderID       *uint64   `gorm:"index" json:"sender_id"`
	Body           string    `gorm:"type:text;not null" json:"body"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`

	// Relations
	Sender      *User               `gorm:"foreignKey:SenderID;constraint:OnDelete:SET NULL" json:"sender,omitempty"`
	Attachments []MessageAttachment `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
}
