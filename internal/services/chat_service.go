package services

import (
	"errors"
	"strings"

	"github.com/yukikurage/workforce-portal/internal/constants"
	"github.com/yukikurage/workforce-portal/internal/models"
	"github.com/yukikurage/workforce-portal/internal/repository"
	"github.com/yukikurage/workforce-portal/internal/storage"
	"github.com/yukikurage/workforce-portal/internal/utils"
	"go.uber.org/zap"
)

var (
	ErrConversationNotFound = newError(ErrNotFound, "conversation not found")
	ErrInvalidJoinToken     = newError(ErrNotFound, "invalid join link")
	ErrNotParticipant       = newError(ErrAuthorization, "you are not a member of this conversation")
	ErrSelfChat             = newError(ErrValidation, "cannot start a chat with yourself")
	ErrGroupNameRequired    = newError(ErrValidation, "group name is required")
	ErrEmptyMessage         = newError(ErrValidation, "message must have text or an attachment")
	ErrInvalidClearMode     = newError(ErrValidation, "clear mode must be 'everyone' or 'mine'")
)

// joinTokenAttempts bounds retries when a generated join token collides.
const joinTokenAttempts = 3

// ClearMode selects which messages ClearChat removes.
type ClearMode string

const (
	// ClearEveryone removes every message of the conversation.
	ClearEveryone ClearMode = "everyone"
	// ClearMine removes the caller's own messages, for all viewers.
	ClearMine ClearMode = "mine"
)

// ConversationSummary is a conversation as listed to one participant.
type ConversationSummary struct {
	models.Conversation
	Title string
}

// ChatService handles conversations, membership and messages.
type ChatService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	files    attachmentStore
	logger   *zap.Logger
}

// NewChatService creates a new ChatService.
func NewChatService(chatRepo repository.ChatRepository, userRepo repository.UserRepository, blobs storage.BlobStore, logger *zap.Logger) *ChatService {
	return &ChatService{
		chatRepo: chatRepo,
		userRepo: userRepo,
		files:    attachmentStore{blobs: blobs, logger: logger},
		logger:   logger,
	}
}

// EnsureBroadcast makes sure the broadcast conversation exists and holds every user.
func (s *ChatService) EnsureBroadcast() (*models.Conversation, error) {
	conv, err := s.chatRepo.EnsureBroadcast(constants.BroadcastConversationName)
	if err != nil {
		return nil, persistence("prepare broadcast conversation", err, nil)
	}
	return conv, nil
}

// ListConversations lists the actor's conversations, broadcast first. One-on-one
// chats are titled with the other participant's name.
func (s *ChatService) ListConversations(actor *models.User) ([]ConversationSummary, error) {
	convs, err := s.chatRepo.ListForUser(actor.ID)
	if err != nil {
		return nil, persistence("list conversations", err, nil)
	}

	summaries := make([]ConversationSummary, len(convs))
	for i, conv := range convs {
		summaries[i] = ConversationSummary{
			Conversation: conv,
			Title:        conversationTitle(conv, actor.ID),
		}
	}
	return summaries, nil
}

// StartIndividual returns the one-on-one conversation between the actor and
// otherUsername, creating it on first use.
func (s *ChatService) StartIndividual(actor *models.User, otherUsername string) (*models.Conversation, error) {
	other, err := s.userRepo.FindByUsername(strings.TrimSpace(otherUsername))
	if err != nil {
		return nil, persistence("find user", err, ErrUserNotFound)
	}
	if other.ID == actor.ID {
		return nil, ErrSelfChat
	}

	conv, created, err := s.chatRepo.StartIndividual(actor.ID, other.ID)
	if err != nil {
		return nil, persistence("start conversation", err, nil)
	}
	if created {
		s.logger.Info("individual chat created",
			zap.Uint64("conversation_id", conv.ID),
			zap.Uint64("user_a", actor.ID),
			zap.Uint64("user_b", other.ID),
		)
	}
	return conv, nil
}

// CreateGroup creates a group chat with the actor and members, issuing a join token.
func (s *ChatService) CreateGroup(actor *models.User, name string, members []string) (*models.Conversation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrGroupNameRequired
	}

	names := uniqueUsernames(members)
	found, err := s.userRepo.FindByUsernames(names)
	if err != nil {
		return nil, persistence("find members", err, nil)
	}
	if len(found) != len(names) {
		return nil, notFoundf("unknown member: %s", strings.Join(missingUsernames(names, found), ", "))
	}

	participantIDs := []uint64{actor.ID}
	for _, u := range found {
		if u.ID != actor.ID {
			participantIDs = append(participantIDs, u.ID)
		}
	}

	creatorID := actor.ID
	for attempt := 1; ; attempt++ {
		token, err := utils.GenerateJoinToken()
		if err != nil {
			return nil, &kindError{kind: ErrPersistence, msg: "failed to generate join link", cause: err}
		}

		conv := &models.Conversation{
			Name:        &name,
			Type:        models.ConversationGroup,
			CreatedByID: &creatorID,
			JoinLink:    &token,
		}

		err = s.chatRepo.Create(conv, participantIDs)
		if err == nil {
			s.logger.Info("group chat created",
				zap.Uint64("conversation_id", conv.ID),
				zap.Int("participants", len(participantIDs)),
				zap.Uint64("by", actor.ID),
			)
			return conv, nil
		}

		err = persistence("create group", err, nil)
		if !errors.Is(err, ErrDuplicate) || attempt == joinTokenAttempts {
			return nil, err
		}
	}
}

// JoinByToken adds the actor to the group holding token. Joining twice is a no-op.
func (s *ChatService) JoinByToken(actor *models.User, token string) (*models.Conversation, error) {
	conv, err := s.chatRepo.FindByJoinLink(strings.TrimSpace(token))
	if err != nil {
		return nil, persistence("find group", err, ErrInvalidJoinToken)
	}

	if err := s.chatRepo.AddParticipant(conv.ID, actor.ID); err != nil {
		return nil, persistence("join group", err, nil)
	}
	return conv, nil
}

// Activate checks the actor may open the conversation and returns it.
func (s *ChatService) Activate(actor *models.User, conversationID uint64) (*models.Conversation, error) {
	return s.memberConversation(actor, conversationID)
}

// SendMessage posts a message. The sender must be a participant and the
// message needs a body or at least one attachment.
func (s *ChatService) SendMessage(actor *models.User, conversationID uint64, body string, uploads []Upload) (*models.Message, error) {
	if strings.TrimSpace(body) == "" && len(uploads) == 0 {
		return nil, ErrEmptyMessage
	}

	if _, err := s.memberConversation(actor, conversationID); err != nil {
		return nil, err
	}

	metas, err := s.files.store(constants.NamespaceChat, chatFileTypes, actor.ID, uploads)
	if err != nil {
		return nil, err
	}

	senderID := actor.ID
	msg := &models.Message{
		ConversationID: conversationID,
		SenderID:       &senderID,
		Body:           strings.TrimSpace(body),
	}

	attachments := make([]models.MessageAttachment, len(metas))
	for i, m := range metas {
		attachments[i] = models.MessageAttachment{FileMeta: m}
	}

	if err := s.chatRepo.CreateMessage(msg, attachments); err != nil {
		s.files.discard(metas)
		return nil, persistence("send message", err, nil)
	}

	sender := *actor
	msg.Sender = &sender
	msg.Attachments = attachments
	return msg, nil
}

// ListMessages returns the latest messages of a conversation, oldest first.
func (s *ChatService) ListMessages(actor *models.User, conversationID uint64) ([]models.Message, error) {
	if _, err := s.memberConversation(actor, conversationID); err != nil {
		return nil, err
	}

	messages, err := s.chatRepo.RecentMessages(conversationID, constants.MessageHistoryLimit)
	if err != nil {
		return nil, persistence("list messages", err, nil)
	}
	return messages, nil
}

// ClearChat hard-deletes every message (ClearEveryone) or the actor's own
// messages (ClearMine), then removes their blobs best-effort.
func (s *ChatService) ClearChat(actor *models.User, conversationID uint64, mode ClearMode) error {
	var senderID *uint64

	switch mode {
	case ClearEveryone:
		if _, err := s.memberConversation(actor, conversationID); err != nil {
			return err
		}
	case ClearMine:
		if _, err := s.chatRepo.FindByID(conversationID); err != nil {
			return persistence("find conversation", err, ErrConversationNotFound)
		}
		id := actor.ID
		senderID = &id
	default:
		return ErrInvalidClearMode
	}

	attachments, err := s.chatRepo.DeleteMessages(conversationID, senderID)
	if err != nil {
		return persistence("clear chat", err, nil)
	}

	paths := make([]string, len(attachments))
	for i, a := range attachments {
		paths[i] = a.FilePath
	}
	s.files.remove(paths)

	s.logger.Info("chat cleared",
		zap.Uint64("conversation_id", conversationID),
		zap.String("mode", string(mode)),
		zap.Uint64("by", actor.ID),
	)
	return nil
}

// OpenAttachment opens a message attachment for a participant of its conversation.
func (s *ChatService) OpenAttachment(actor *models.User, attachmentID uint64) (*Blob, error) {
	attachment, conversationID, err := s.chatRepo.FindAttachment(attachmentID)
	if err != nil {
		return nil, persistence("find attachment", err, ErrAttachmentNotFound)
	}

	member, err := s.chatRepo.IsParticipant(conversationID, actor.ID)
	if err != nil {
		return nil, persistence("check membership", err, nil)
	}
	if !member {
		return nil, ErrNotParticipant
	}

	return s.files.open(attachment.FileMeta)
}

// memberConversation loads a conversation the actor participates in
func (s *ChatService) memberConversation(actor *models.User, conversationID uint64) (*models.Conversation, error) {
	conv, err := s.chatRepo.FindByID(conversationID)
	if err != nil {
		return nil, persistence("find conversation", err, ErrConversationNotFound)
	}

	member, err := s.chatRepo.IsParticipant(conversationID, actor.ID)
	if err != nil {
		return nil, persistence("check membership", err, nil)
	}
	if !member {
		return nil, ErrNotParticipant
	}
	return conv, nil
}

func conversationTitle(conv models.Conversation, viewerID uint64) string {
	if conv.Type == models.ConversationIndividual {
		for _, p := range conv.Participants {
			if p.UserID != viewerID {
				return p.User.DisplayName()
			}
		}
	}
	if conv.Name != nil && *conv.Name != "" {
		return *conv.Name
	}
	return "Chat"
}

func missingUsernames(names []string, found []models.User) []string {
	present := make(map[string]struct{}, len(found))
	for _, u := range found {
		present[u.Username] = struct{}{}
	}

	var missing []string
	for _, n := range names {
		if _, ok := present[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}
