package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workforce-portal/internal/dto"
	apierrors "github.com/yukikurage/workforce-portal/internal/errors"
	"github.com/yukikurage/workforce-portal/internal/services"
)

// NoticeHandler serves the notice board.
type NoticeHandler struct {
	noticeService *services.NoticeService
}

// NewNoticeHandler creates a new NoticeHandler.
func NewNoticeHandler(noticeService *services.NoticeService) *NoticeHandler {
	return &NoticeHandler{noticeService: noticeService}
}

type noticeRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ListNotices returns the notices visible to the caller, newest first
func (h *NoticeHandler) ListNotices(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	notices, err := h.noticeService.List(actor)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notices":    dto.ToNoticeDTOs(notices),
		"can_manage": actor.CanManageNotices(),
	})
}

// CreateNotice posts a notice from JSON or a multipart form with attachments
func (h *NoticeHandler) CreateNotice(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var (
		req     noticeRequest
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
		req = noticeRequest{Title: c.PostForm("title"), Content: c.PostForm("content")}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	notice, err := h.noticeService.Create(actor, services.CreateNoticeInput{
		Title:       req.Title,
		Content:     req.Content,
		Attachments: uploads,
	})
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToNoticeDTO(*notice))
}

// UpdateNotice edits a notice's title and content
func (h *NoticeHandler) UpdateNotice(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req noticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	notice, err := h.noticeService.Update(actor, id, req.Title, req.Content)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToNoticeDTO(*notice))
}

// SetActive shows or hides a notice
func (h *NoticeHandler) SetActive(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	type SetActiveRequest struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	notice, err := h.noticeService.SetActive(actor, id, *req.IsActive)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToNoticeDTO(*notice))
}

// DeleteNotice removes a notice and its attachments
func (h *NoticeHandler) DeleteNotice(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.noticeService.Delete(actor, id); err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notice deleted successfully"})
}

// DownloadAttachment streams a notice attachment
func (h *NoticeHandler) DownloadAttachment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "attachment_id")
	if !ok {
		return
	}

	blob, err := h.noticeService.OpenAttachment(actor, id)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	sendBlob(c, blob)
}
