package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workforce-portal/internal/dto"
	apierrors "github.com/yukikurage/workforce-portal/internal/errors"
	"github.com/yukikurage/workforce-portal/internal/services"
	"github.com/yukikurage/workforce-portal/internal/session"
)

// ChatHandler serves conversations and messages.
type ChatHandler struct {
	chatService *services.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ListConversations returns the caller's conversations, broadcast first
func (h *ChatHandler) ListConversations(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	summaries, err := h.chatService.ListConversations(actor)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	items := make([]dto.ConversationDTO, len(summaries))
	for i, s := range summaries {
		items[i] = dto.ToConversationDTO(s)
	}

	st, _ := session.Load(c)
	c.JSON(http.StatusOK, gin.H{
		"conversations":          items,
		"active_conversation_id": st.ActiveConversationID,
	})
}

// StartIndividual opens the one-on-one chat with another user
func (h *ChatHandler) StartIndividual(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type StartRequest struct {
		Username string `json:"username" binding:"required"`
	}

	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	conv, err := h.chatService.StartIndividual(actor, req.Username)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	h.activate(c, conv.ID)
	c.JSON(http.StatusOK, dto.ToConversationDTOFromModel(*conv))
}

// CreateGroup creates a group chat and returns its join link
func (h *ChatHandler) CreateGroup(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type CreateGroupRequest struct {
		Name    string   `json:"name"`
		Members []string `json:"members"`
	}

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	conv, err := h.chatService.CreateGroup(actor, req.Name, req.Members)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToConversationDTOFromModel(*conv))
}

// JoinGroup joins a group through its join link
func (h *ChatHandler) JoinGroup(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type JoinRequest struct {
		JoinLink string `json:"join_link" binding:"required"`
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	conv, err := h.chatService.JoinByToken(actor, req.JoinLink)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	h.activate(c, conv.ID)
	c.JSON(http.StatusOK, gin.H{
		"message":      "Successfully joined group",
		"conversation": dto.ToConversationDTOFromModel(*conv),
	})
}

// Activate marks a conversation as the one the caller has open
func (h *ChatHandler) Activate(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	conv, err := h.chatService.Activate(actor, id)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	if err := session.SetActiveConversation(c, conv.ID); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"active_conversation_id": conv.ID})
}

// activate records the conversation in the session; failures only cost the highlight.
func (h *ChatHandler) activate(c *gin.Context, conversationID uint64) {
	_ = session.SetActiveConversation(c, conversationID)
}

// ListMessages returns the latest messages, oldest first
func (h *ChatHandler) ListMessages(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	messages, err := h.chatService.ListMessages(actor, id)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": dto.ToMessageDTOs(messages)})
}

// SendMessage posts a message from JSON or a multipart form with attachments
func (h *ChatHandler) SendMessage(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	type SendRequest struct {
		Body string `json:"body"`
	}

	var (
		req     SendRequest
		uploads []services.Upload
	)

	if isMultipart(c) {
		files, closeFiles, err := formUploads(c)
		if err != nil {
			apierrors.BadRequest(c, "Invalid multipart form")
			return
		}
		defer closeFiles()

		uploads = files
		req.Body = c.PostForm("body")
	} else if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	msg, err := h.chatService.SendMessage(actor, id, req.Body, uploads)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMessageDTO(*msg))
}

// ClearChat deletes every message or only the caller's own
func (h *ChatHandler) ClearChat(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	type ClearRequest struct {
		Mode string `json:"mode" binding:"required"`
	}

	var req ClearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.chatService.ClearChat(actor, id, services.ClearMode(req.Mode)); err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Chat cleared"})
}

// DownloadAttachment streams a message attachment
func (h *ChatHandler) DownloadAttachment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "attachment_id")
	if !ok {
		return
	}

	blob, err := h.chatService.OpenAttachment(actor, id)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	sendBlob(c, blob)
}
