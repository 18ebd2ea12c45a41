package repository

import (
	"errors"

	"github.com/yukikurage/workforce-portal/internal/constants"
	"github.com/yukikurage/workforce-portal/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormChatRepository is a GORM implementation of ChatRepository
type GormChatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &GormChatRepository{db: db}
}

// FindIndividual finds the individual conversation between the two users
func (r *GormChatRepository) FindIndividual(userA, userB uint64) (*models.Conversation, error) {
	return findByUniqueKey(r.db, models.IndividualKey(userA, userB))
}

func findByUniqueKey(db *gorm.DB, key string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := db.Where("unique_key = ?", key).First(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// insertKeyed inserts a conversation carrying a UniqueKey. It reports false
// when another writer already holds the key; the transaction stays usable.
func insertKeyed(tx *gorm.DB, conv *models.Conversation) (bool, error) {
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "unique_key"}},
		DoNothing: true,
	}).Omit("Participants", "Messages").Create(conv)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Create creates a conversation with its participants
func (r *GormChatRepository) Create(conv *models.Conversation, participantIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return createConversation(tx, conv, participantIDs)
	})
}

func createConversation(tx *gorm.DB, conv *models.Conversation, participantIDs []uint64) error {
	if err := tx.Omit("Participants", "Messages").Create(conv).Error; err != nil {
		return err
	}
	for _, userID := range participantIDs {
		if err := addParticipant(tx, conv.ID, userID); err != nil {
			return err
		}
	}
	return nil
}

// StartIndividual reuses the pair's conversation or creates it. The pair key
// is unique, so concurrent first messages converge on one conversation.
func (r *GormChatRepository) StartIndividual(userA, userB uint64) (*models.Conversation, bool, error) {
	var (
		conv    *models.Conversation
		created bool
	)
	key := models.IndividualKey(userA, userB)

	err := r.db.Transaction(func(tx *gorm.DB) error {
		existing, err := findByUniqueKey(tx, key)
		if err == nil {
			conv = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		creator := userA
		candidate := &models.Conversation{
			Type:        models.ConversationIndividual,
			CreatedByID: &creator,
			UniqueKey:   &key,
		}
		inserted, err := insertKeyed(tx, candidate)
		if err != nil {
			return err
		}
		if !inserted {
			conv, err = findByUniqueKey(tx, key)
			return err
		}

		conv = candidate
		created = true
		for _, userID := range []uint64{userA, userB} {
			if err := addParticipant(tx, conv.ID, userID); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// a concurrent writer won the insert
		conv, err = findByUniqueKey(r.db, key)
		created = false
	}
	if err != nil {
		return nil, false, err
	}

	return conv, created, nil
}

// FindByID finds a conversation by ID
func (r *GormChatRepository) FindByID(id uint64) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.First(&conv, id).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindByJoinLink finds a group conversation by its join token
func (r *GormChatRepository) FindByJoinLink(token string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.Where("join_link = ?", token).First(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindBroadcast finds the broadcast conversation
func (r *GormChatRepository) FindBroadcast() (*models.Conversation, error) {
	return findByUniqueKey(r.db, models.BroadcastKey)
}

// EnsureBroadcast creates the broadcast conversation if missing and enrols every user
func (r *GormChatRepository) EnsureBroadcast(name string) (*models.Conversation, error) {
	var conv *models.Conversation

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		conv, err = ensureBroadcast(tx, name)
		if err != nil {
			return err
		}

		var missing []uint64
		if err := tx.Model(&models.User{}).
			Where("NOT EXISTS (SELECT 1 FROM participants p WHERE p.conversation_id = ? AND p.user_id = users.id)", conv.ID).
			Pluck("id", &missing).Error; err != nil {
			return err
		}

		for _, userID := range missing {
			if err := addParticipant(tx, conv.ID, userID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return conv, nil
}

// ensureBroadcast returns the broadcast conversation, creating it when absent
func ensureBroadcast(tx *gorm.DB, name string) (*models.Conversation, error) {
	conv, err := findByUniqueKey(tx, models.BroadcastKey)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if name == "" {
		name = constants.BroadcastConversationName
	}
	key := models.BroadcastKey
	conv = &models.Conversation{
		Name:      &name,
		Type:      models.ConversationAll,
		UniqueKey: &key,
	}
	inserted, err := insertKeyed(tx, conv)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return findByUniqueKey(tx, models.BroadcastKey)
	}
	return conv, nil
}

// AddParticipant adds a user to a conversation, ignoring existing membership
func (r *GormChatRepository) AddParticipant(conversationID, userID uint64) error {
	return addParticipant(r.db, conversationID, userID)
}

func addParticipant(tx *gorm.DB, conversationID, userID uint64) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Omit("Conversation", "User").
		Create(&models.Participant{
			ConversationID: conversationID,
			UserID:         userID,
		}).Error
}

// IsParticipant reports whether the user belongs to the conversation
func (r *GormChatRepository) IsParticipant(conversationID, userID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.Participant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	return count > 0, err
}

// ListForUser lists the user's conversations, broadcast first, then newest first
func (r *GormChatRepository) ListForUser(userID uint64) ([]models.Conversation, error) {
	var convs []models.Conversation
	if err := r.db.
		Joins("JOIN participants ON participants.conversation_id = conversations.id").
		Where("participants.user_id = ?", userID).
		Preload("Participants.User").
		Order("CASE conversations.type WHEN 'all' THEN 0 ELSE 1 END").
		Order("conversations.created_at DESC").
		Order("conversations.id DESC").
		Find(&convs).Error; err != nil {
		return nil, err
	}
	return convs, nil
}

// CreateMessage creates a message and its attachment rows
func (r *GormChatRepository) CreateMessage(msg *models.Message, attachments []models.MessageAttachment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Sender", "Attachments").Create(msg).Error; err != nil {
			return err
		}

		for i := range attachments {
			attachments[i].MessageID = msg.ID
		}
		if len(attachments) > 0 {
			if err := tx.Create(&attachments).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// RecentMessages returns the newest limit messages in chronological order
func (r *GormChatRepository) RecentMessages(conversationID uint64, limit int) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Preload("Sender").
		Preload("Attachments").
		Find(&messages).Error; err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// DeleteMessages hard-deletes messages of a conversation, optionally only one sender's
func (r *GormChatRepository) DeleteMessages(conversationID uint64, senderID *uint64) ([]models.MessageAttachment, error) {
	var attachments []models.MessageAttachment

	err := r.db.Transaction(func(tx *gorm.DB) error {
		messages := func() *gorm.DB {
			q := tx.Model(&models.Message{}).Where("conversation_id = ?", conversationID)
			if senderID != nil {
				q = q.Where("sender_id = ?", *senderID)
			}
			return q
		}

		if err := tx.Where("message_id IN (?)", messages().Select("id")).Find(&attachments).Error; err != nil {
			return err
		}
		if err := tx.Where("message_id IN (?)", messages().Select("id")).Delete(&models.MessageAttachment{}).Error; err != nil {
			return err
		}
		return messages().Delete(&models.Message{}).Error
	})
	if err != nil {
		return nil, err
	}

	return attachments, nil
}

// FindAttachment finds a message attachment and the conversation it was posted in
func (r *GormChatRepository) FindAttachment(id uint64) (*models.MessageAttachment, uint64, error) {
	var attachment models.MessageAttachment
	if err := r.db.First(&attachment, id).Error; err != nil {
		return nil, 0, err
	}

	var msg models.Message
	if err := r.db.Select("id", "conversation_id").First(&msg, attachment.MessageID).Error; err != nil {
		return nil, 0, err
	}

	return &attachment, msg.ConversationID, nil
}
