package services

import (
	"strings"

	"github.com/yukikurage/workforce-portal/internal/constants"
	"github.com/yukikurage/workforce-portal/internal/models"
	"github.com/yukikurage/workforce-portal/internal/repository"
	"github.com/yukikurage/workforce-portal/internal/storage"
	"go.uber.org/zap"
)

var (
	ErrNoticeNotFound       = newError(ErrNotFound, "notice not found")
	ErrNotNoticeManager     = newError(ErrAuthorization, "only admins, directors and HR can manage notices")
	ErrNoticeFieldsRequired = newError(ErrValidation, "title and content are required")
)

// NoticeService manages the company notice board.
type NoticeService struct {
	repo   repository.NoticeRepository
	files  attachmentStore
	logger *zap.Logger
}

// NewNoticeService creates a new NoticeService.
func NewNoticeService(repo repository.NoticeRepository, blobs storage.BlobStore, logger *zap.Logger) *NoticeService {
	return &NoticeService{
		repo:   repo,
		files:  attachmentStore{blobs: blobs, logger: logger},
		logger: logger,
	}
}

// CreateNoticeInput represents a new notice
type CreateNoticeInput struct {
	Title       string
	Content     string
	Attachments []Upload
}

// List returns every notice to managers and only active ones to everyone else.
func (s *NoticeService) List(actor *models.User) ([]models.Notice, error) {
	notices, err := s.repo.List(!actor.CanManageNotices())
	if err != nil {
		return nil, persistence("list notices", err, nil)
	}
	return notices, nil
}

// Create posts a notice with its attachments.
func (s *NoticeService) Create(actor *models.User, input CreateNoticeInput) (*models.Notice, error) {
	if !actor.CanManageNotices() {
		return nil, ErrNotNoticeManager
	}

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, ErrNoticeFieldsRequired
	}

	metas, err := s.files.store(constants.NamespaceNotices, noticeFileTypes, actor.ID, input.Attachments)
	if err != nil {
		return nil, err
	}

	authorID := actor.ID
	notice := &models.Notice{
		Title:       title,
		Content:     content,
		CreatedByID: &authorID,
		IsActive:    true,
	}

	attachments := make([]models.NoticeAttachment, len(metas))
	for i, m := range metas {
		attachments[i] = models.NoticeAttachment{FileMeta: m}
	}

	if err := s.repo.Create(notice, attachments); err != nil {
		s.files.discard(metas)
		return nil, persistence("create notice", err, nil)
	}

	s.logger.Info("notice posted", zap.Uint64("notice_id", notice.ID), zap.Uint64("by", actor.ID))
	return s.load(notice.ID)
}

// Update edits title and content. Attachments are left untouched.
func (s *NoticeService) Update(actor *models.User, id uint64, title, content string) (*models.Notice, error) {
	if !actor.CanManageNotices() {
		return nil, ErrNotNoticeManager
	}

	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, ErrNoticeFieldsRequired
	}

	if _, err := s.load(id); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateFields(id, map[string]interface{}{
		"title":   title,
		"content": content,
	}); err != nil {
		return nil, persistence("update notice", err, ErrNoticeNotFound)
	}

	return s.load(id)
}

// SetActive shows or hides a notice for non-managers.
func (s *NoticeService) SetActive(actor *models.User, id uint64, active bool) (*models.Notice, error) {
	if !actor.CanManageNotices() {
		return nil, ErrNotNoticeManager
	}

	if _, err := s.load(id); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateFields(id, map[string]interface{}{"is_active": active}); err != nil {
		return nil, persistence("update notice", err, ErrNoticeNotFound)
	}

	return s.load(id)
}

// Delete removes a notice; its blobs are removed best-effort.
func (s *NoticeService) Delete(actor *models.User, id uint64) error {
	if !actor.CanManageNotices() {
		return ErrNotNoticeManager
	}

	attachments, err := s.repo.Delete(id)
	if err != nil {
		return persistence("delete notice", err, ErrNoticeNotFound)
	}

	paths := make([]string, len(attachments))
	for i, a := range attachments {
		paths[i] = a.FilePath
	}
	s.files.remove(paths)

	s.logger.Info("notice deleted", zap.Uint64("notice_id", id), zap.Uint64("by", actor.ID))
	return nil
}

// OpenAttachment opens a notice attachment if the actor can see the notice.
func (s *NoticeService) OpenAttachment(actor *models.User, attachmentID uint64) (*Blob, error) {
	attachment, notice, err := s.repo.FindAttachment(attachmentID)
	if err != nil {
		return nil, persistence("find attachment", err, ErrAttachmentNotFound)
	}
	if !notice.IsActive && !actor.CanManageNotices() {
		return nil, ErrAttachmentNotFound
	}

	return s.files.open(attachment.FileMeta)
}

func (s *NoticeService) load(id uint64) (*models.Notice, error) {
	notice, err := s.repo.FindByID(id)
	if err != nil {
		return nil, persistence("load notice", err, ErrNoticeNotFound)
	}
	return notice, nil
}
