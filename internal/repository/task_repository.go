package repository

import (
	"github.com/yukikurage/workforce-portal/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Transaction runs fn with a repository bound to a single transaction
func (r *GormTaskRepository) Transaction(fn func(repo TaskRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormTaskRepository{db: tx})
	})
}

// Create creates a task, one assignment per assignee and its attachment rows
func (r *GormTaskRepository) Create(task *models.Task, assigneeIDs []uint64, attachments []models.TaskAttachment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("CreatedBy", "Assignments", "Attachments").Create(task).Error; err != nil {
			return err
		}

		assignments := make([]models.TaskAssignment, len(assigneeIDs))
		for i, userID := range assigneeIDs {
			assignments[i] = models.TaskAssignment{
				TaskID: task.ID,
				UserID: userID,
			}
		}
		if len(assignments) > 0 {
			if err := tx.Omit("Task", "User").Create(&assignments).Error; err != nil {
				return err
			}
		}

		for i := range attachments {
			attachments[i].TaskID = task.ID
		}
		if len(attachments) > 0 {
			if err := tx.Create(&attachments).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks ordered urgent first, then newest first
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, error) {
	query := r.db.Model(&models.Task{})

	// Apply filters
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.AssignedUserID != nil {
		assignmentSubQuery := r.db.Model(&models.TaskAssignment{}).
			Select("1").
			Where("task_assignments.task_id = tasks.id").
			Where("task_assignments.user_id = ?", *filter.AssignedUserID)
		query = query.Where("EXISTS (?)", assignmentSubQuery)
	}
	if filter.Department != nil {
		departmentSubQuery := r.db.Model(&models.TaskAssignment{}).
			Select("1").
			Joins("JOIN users ON users.id = task_assignments.user_id").
			Where("task_assignments.task_id = tasks.id").
			Where("users.department = ?", *filter.Department)
		query = query.Where("EXISTS (?)", departmentSubQuery)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("tasks.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("tasks.created_at < ?", *filter.CreatedTo)
	}

	var tasks []models.Task
	if err := query.
		Order(models.PriorityOrderSQL).
		Order("tasks.created_at DESC").
		Order("tasks.id DESC").
		Preload("CreatedBy").
		Preload("Assignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("task_assignments.assigned_at, task_assignments.user_id")
		}).
		Preload("Assignments.User").
		Preload("Attachments").
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// IsAssigned reports whether the user is assigned to the task
func (r *GormTaskRepository) IsAssigned(taskID, userID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.TaskAssignment{}).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Count(&count).Error
	return count > 0, err
}

// UpdateFields updates the given columns of a task
func (r *GormTaskRepository) UpdateFields(id uint64, fields map[string]interface{}) error {
	return r.db.Model(&models.Task{}).Where("id = ?", id).Updates(fields).Error
}

// Delete hard-deletes a task together with its assignments and attachment rows
func (r *GormTaskRepository) Delete(id uint64) ([]models.TaskAttachment, error) {
	var attachments []models.TaskAttachment

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Find(&attachments).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAttachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Task{}, id)
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

// FindAttachment finds a specific attachment of a task
func (r *GormTaskRepository) FindAttachment(taskID, attachmentID uint64) (*models.TaskAttachment, error) {
	var attachment models.TaskAttachment
	if err := r.db.Where("id = ? AND task_id = ?", attachmentID, taskID).
		First(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}
