package repository

import (
	"strings"

	"github.com/yukikurage/workforce-portal/internal/database"
	"github.com/yukikurage/workforce-portal/internal/models"
	"github.com/yukikurage/workforce-portal/internal/utils"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// CreateWithBroadcast creates a user and adds them to the broadcast conversation atomically.
func (r *GormUserRepository) CreateWithBroadcast(user *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		conv, err := ensureBroadcast(tx, "")
		if err != nil {
			return err
		}

		return addParticipant(tx, conv.ID, user.ID)
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsernames returns the existing users among usernames
func (r *GormUserRepository) FindByUsernames(usernames []string) ([]models.User, error) {
	if len(usernames) == 0 {
		return []models.User{}, nil
	}

	var users []models.User
	if err := r.db.Where("username IN ?", usernames).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ExistsByEmployeeID reports whether an employee id is already registered
func (r *GormUserRepository) ExistsByEmployeeID(employeeID string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Where("employee_id = ?", employeeID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns a page of users. Every whitespace-separated search term must
// match one of name, username, employee id or department.
func (r *GormUserRepository) List(search string, params utils.PaginationParams) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})

	for _, term := range strings.Fields(strings.ToLower(search)) {
		like := "%" + term + "%"
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(username) LIKE ? OR LOWER(employee_id) LIKE ? OR LOWER(department) LIKE ?",
			like, like, like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := query.
		Order("is_admin DESC, is_director DESC, first_name, last_name, username").
		Scopes(database.Paginate(params)).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ListDirectors returns every director ordered by username
func (r *GormUserRepository) ListDirectors() ([]models.User, error) {
	var users []models.User
	if err := r.db.Where("is_director = ?", true).Order("username").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// SetDirector updates the director flag
func (r *GormUserRepository) SetDirector(id uint64, isDirector bool) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("is_director", isDirector).Error
}

// Delete removes a user. Join rows go with them; authored rows keep existing
// with their author reference cleared.
func (r *GormUserRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Participant{}).Error; err != nil {
			return err
		}

		nullify := []struct {
			model  interface{}
			column string
		}{
			{&models.Message{}, "sender_id"},
			{&models.Notice{}, "created_by_id"},
			{&models.Task{}, "created_by_id"},
			{&models.Conversation{}, "created_by_id"},
			{&models.TaskAttachment{}, "uploaded_by_id"},
			{&models.NoticeAttachment{}, "uploaded_by_id"},
			{&models.MessageAttachment{}, "uploaded_by_id"},
		}
		for _, n := range nullify {
			if err := tx.Model(n.model).Where(n.column+" = ?", id).Update(n.column, nil).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
