package database

import (
	"errors"
	"fmt"

	"github.com/yukikurage/workforce-portal/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes the listing queries rely on.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model   interface{}
		table   string
		name    string
		columns string
	}{
		// Visibility ordering
		{&models.Task{}, "tasks", "idx_tasks_priority_created_at", "priority, created_at"},

		// Message history per conversation
		{&models.Message{}, "messages", "idx_messages_conversation_created_at", "conversation_id, created_at"},
		{&models.Message{}, "messages", "idx_messages_conversation_sender", "conversation_id, sender_id"},

		// Notice board listing
		{&models.Notice{}, "notices", "idx_notices_active_created_at", "is_active, created_at"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}

// BackfillConversationKeys stamps UniqueKey on individual and broadcast
// conversations created before the column existed. When two old rows share a
// key the oldest keeps it and the newer one stays unkeyed.
func BackfillConversationKeys(db *gorm.DB) error {
	var convs []models.Conversation
	if err := db.
		Where("unique_key IS NULL AND type IN ?", []models.ConversationType{models.ConversationIndividual, models.ConversationAll}).
		Order("id").
		Find(&convs).Error; err != nil {
		return fmt.Errorf("failed to load unkeyed conversations: %w", err)
	}

	for _, conv := range convs {
		key := models.BroadcastKey
		if conv.Type == models.ConversationIndividual {
			var userIDs []uint64
			if err := db.Model(&models.Participant{}).
				Where("conversation_id = ?", conv.ID).
				Order("user_id").
				Pluck("user_id", &userIDs).Error; err != nil {
				return fmt.Errorf("failed to load participants of conversation %d: %w", conv.ID, err)
			}
			if len(userIDs) != 2 {
				continue
			}
			key = models.IndividualKey(userIDs[0], userIDs[1])
		}

		err := db.Model(&models.Conversation{}).
			Where("id = ? AND unique_key IS NULL", conv.ID).
			Update("unique_key", key).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to key conversation %d: %w", conv.ID, err)
		}
	}

	return nil
}
