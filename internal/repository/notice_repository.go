package repository

import (
	"github.com/yukikurage/workforce-portal/internal/models"
	"gorm.io/gorm"
)

// GormNoticeRepository is a GORM implementation of NoticeRepository
type GormNoticeRepository struct {
	db *gorm.DB
}

// NewNoticeRepository creates a new NoticeRepository
func NewNoticeRepository(db *gorm.DB) NoticeRepository {
	return &GormNoticeRepository{db: db}
}

// List returns notices newest first with author and attachments
func (r *GormNoticeRepository) List(activeOnly bool) ([]models.Notice, error) {
	query := r.db.Model(&models.Notice{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var notices []models.Notice
	if err := query.
		Preload("CreatedBy").
		Preload("Attachments").
		Order("created_at DESC, id DESC").
		Find(&notices).Error; err != nil {
		return nil, err
	}
	return notices, nil
}

// Create creates a notice and its attachment rows
func (r *GormNoticeRepository) Create(notice *models.Notice, attachments []models.NoticeAttachment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("CreatedBy", "Attachments").Create(notice).Error; err != nil {
			return err
		}

		for i := range attachments {
			attachments[i].NoticeID = notice.ID
		}
		if len(attachments) > 0 {
			if err := tx.Create(&attachments).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID finds a notice with author and attachments
func (r *GormNoticeRepository) FindByID(id uint64) (*models.Notice, error) {
	var notice models.Notice
	if err := r.db.Preload("CreatedBy").Preload("Attachments").First(&notice, id).Error; err != nil {
		return nil, err
	}
	return &notice, nil
}

// UpdateFields updates the given columns of a notice
func (r *GormNoticeRepository) UpdateFields(id uint64, fields map[string]interface{}) error {
	return r.db.Model(&models.Notice{}).Where("id = ?", id).Updates(fields).Error
}

// Delete deletes a notice and its attachment rows
func (r *GormNoticeRepository) Delete(id uint64) ([]models.NoticeAttachment, error) {
	var attachments []models.NoticeAttachment

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("notice_id = ?", id).Find(&attachments).Error; err != nil {
			return err
		}
		if err := tx.Where("notice_id = ?", id).Delete(&models.NoticeAttachment{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Notice{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return attachments, nil
}

// FindAttachment finds an attachment and the notice it belongs to
func (r *GormNoticeRepository) FindAttachment(id uint64) (*models.NoticeAttachment, *models.Notice, error) {
	var attachment models.NoticeAttachment
	if err := r.db.First(&attachment, id).Error; err != nil {
		return nil, nil, err
	}

	var notice models.Notice
	if err := r.db.First(&notice, attachment.NoticeID).Error; err != nil {
		return nil, nil, err
	}

	return &attachment, &notice, nil
}
