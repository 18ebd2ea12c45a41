package models

import (
	"fmt"
	"time"
)

type ConversationType string

const (
	ConversationIndividual ConversationType = "individual"
	ConversationGroup      ConversationType = "group"
	ConversationAll        ConversationType = "all"
)

// BroadcastKey is the UniqueKey of the single broadcast conversation.
const BroadcastKey = "all"

// IndividualKey is the UniqueKey of the individual conversation between two users.
// The order of the arguments does not matter.
func IndividualKey(userA, userB uint64) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("pair:%d:%d", userA, userB)
}

type Conversation struct {
	ID          uint64           `gorm:"primarykey" json:"id"`
	Name        *string          `gorm:"type:varchar(255)" json:"name"`
	Type        ConversationType `gorm:"type:varchar(20);not null;index" json:"type"`
	CreatedByID *uint64          `gorm:"index" json:"created_by_id"`
	JoinLink    *string          `gorm:"type:varchar(50);uniqueIndex" json:"join_link,omitempty"`
	UniqueKey   *string          `gorm:"type:varchar(50);uniqueIndex" json:"-"` // set for individual and broadcast chats, null for groups
	CreatedAt   time.Time        `json:"created_at"`

	// Relations
	Participants []Participant `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"participants,omitempty"`
	Messages     []Message     `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
}

type Participant struct {
	ConversationID uint64    `gorm:"primarykey" json:"conversation_id"`
	UserID         uint64    `gorm:"primarykey;index" json:"user_id"`
	JoinedAt       time.Time `gorm:"autoCreateTime" json:"joined_at"`

	// Relations
	Conversation Conversation `gorm:"foreignKey:ConversationID" json:"-"`
	User         User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
