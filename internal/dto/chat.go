package dto

import (
	"time"

	"github.com/yukikurage/workforce-portal/internal/models"
	"github.com/yukikurage/workforce-portal/internal/services"
)

// deletedUser labels content whose author account is gone
const deletedUser = "Deleted user"

// ConversationDTO represents a conversation as seen by one participant
type ConversationDTO struct {
	ID           uint64                  `json:"id"`
	Type         models.ConversationType `json:"type"`
	Title        string                  `json:"title"`
	JoinLink     string                  `json:"join_link,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	Participants []UserSummaryDTO        `json:"participants,omitempty"`
}

// MessageDTO represents a chat message
type MessageDTO struct {
	ID             uint64          `json:"id"`
	ConversationID uint64          `json:"conversation_id"`
	SenderID       *uint64         `json:"sender_id"`
	SenderName     string          `json:"sender_name"`
	Body           string          `json:"body"`
	CreatedAt      time.Time       `json:"created_at"`
	Attachments    []AttachmentDTO `json:"attachments"`
}

// ToConversationDTO converts a conversation summary to ConversationDTO
func ToConversationDTO(summary services.ConversationSummary) ConversationDTO {
	dto := ToConversationDTOFromModel(summary.Conversation)
	dto.Title = summary.Title
	return dto
}

// ToConversationDTOFromModel converts a bare conversation; the title is its name
func ToConversationDTOFromModel(conv models.Conversation) ConversationDTO {
	dto := ConversationDTO{
		ID:        conv.ID,
		Type:      conv.Type,
		CreatedAt: conv.CreatedAt,
	}
	if conv.Name != nil {
		dto.Title = *conv.Name
	}
	if conv.JoinLink != nil {
		dto.JoinLink = *conv.JoinLink
	}
	for _, p := range conv.Participants {
		dto.Participants = append(dto.Participants, ToUserSummaryDTO(p.User))
	}
	return dto
}

// ToMessageDTO converts a Message model to MessageDTO
func ToMessageDTO(msg models.Message) MessageDTO {
	dto := MessageDTO{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		SenderName:     deletedUser,
		Body:           msg.Body,
		CreatedAt:      msg.CreatedAt,
		Attachments:    make([]AttachmentDTO, 0, len(msg.Attachments)),
	}
	if msg.Sender != nil {
		dto.SenderName = msg.Sender.DisplayName()
	}
	for _, att := range msg.Attachments {
		dto.Attachments = append(dto.Attachments, ToAttachmentDTO(att.ID, att.FileMeta))
	}
	return dto
}

// ToMessageDTOs converts a slice of messages
func ToMessageDTOs(messages []models.Message) []MessageDTO {
	items := make([]MessageDTO, len(messages))
	for i, m := range messages {
		items[i] = ToMessageDTO(m)
	}
	return items
}
