package services

import (
	"errors"
	"strings"

	"github.com/yukikurage/workforce-portal/internal/constants"
	"github.com/yukikurage/workforce-portal/internal/models"
	"github.com/yukikurage/workforce-portal/internal/repository"
	"github.com/yukikurage/workforce-portal/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotUserManager       = newError(ErrAuthorization, "only admins and directors can manage users")
	ErrCannotDeleteSelf     = newError(ErrValidation, "you cannot delete your own account")
	ErrCannotDeleteAdmin    = newError(ErrValidation, "cannot delete admin account")
	ErrDirectorFieldsNeeded = newError(ErrValidation, "username, password, first name and last name are required")
)

// employeeIDAttempts bounds retries when a generated director id collides.
const employeeIDAttempts = 5

// UserService provides user management for admins and directors.
type UserService struct {
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, taskRepo repository.TaskRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		taskRepo: taskRepo,
		logger:   logger,
	}
}

// ListUsers returns a page of users matching search.
func (s *UserService) ListUsers(actor *models.User, search string, params utils.PaginationParams) ([]models.User, int64, error) {
	if !actor.SeesAllTasks() {
		return nil, 0, ErrNotUserManager
	}

	users, total, err := s.userRepo.List(search, params)
	if err != nil {
		return nil, 0, persistence("list users", err, nil)
	}
	return users, total, nil
}

// CreateDirectorInput represents the fields of a new director account.
type CreateDirectorInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// CreateDirector creates a director account with a generated employee id.
func (s *UserService) CreateDirector(actor *models.User, input CreateDirectorInput) (*models.User, error) {
	if !actor.SeesAllTasks() {
		return nil, ErrNotUserManager
	}

	username := strings.TrimSpace(input.Username)
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if username == "" || input.Password == "" || firstName == "" || lastName == "" {
		return nil, ErrDirectorFieldsNeeded
	}
	if strings.EqualFold(username, constants.AdminUsername) {
		return nil, ErrReservedUsername
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, persistence("check username", err, nil)
	}

	employeeID, err := s.freeDirectorEmployeeID()
	if err != nil {
		return nil, err
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	director := &models.User{
		Username:     username,
		EmployeeID:   employeeID,
		FirstName:    firstName,
		LastName:     lastName,
		Department:   constants.DepartmentAllDepartments,
		Designation:  constants.DesignationDirector,
		IsDirector:   true,
		PasswordHash: hash,
	}

	if err := s.userRepo.CreateWithBroadcast(director); err != nil {
		return nil, persistence("create director", err, nil)
	}

	s.logger.Info("director created",
		zap.String("username", director.Username),
		zap.String("employee_id", director.EmployeeID),
		zap.Uint64("by", actor.ID),
	)
	return director, nil
}

// SetDirector grants or revokes the director flag. Sessions pick the change
// up on their next request because the actor is re-read every time.
func (s *UserService) SetDirector(actor *models.User, username string, isDirector bool) (*models.User, error) {
	if !actor.SeesAllTasks() {
		return nil, ErrNotUserManager
	}

	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, persistence("find user", err, ErrUserNotFound)
	}

	if err := s.userRepo.SetDirector(user.ID, isDirector); err != nil {
		return nil, persistence("update director status", err, ErrUserNotFound)
	}
	user.IsDirector = isDirector

	s.logger.Info("director status changed",
		zap.String("username", user.Username),
		zap.Bool("is_director", isDirector),
		zap.Uint64("by", actor.ID),
	)
	return user, nil
}

// DeleteUser removes an account. Admin accounts and the caller's own account are protected.
func (s *UserService) DeleteUser(actor *models.User, username string) error {
	if !actor.SeesAllTasks() {
		return ErrNotUserManager
	}

	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return persistence("find user", err, ErrUserNotFound)
	}
	if user.IsAdmin {
		return ErrCannotDeleteAdmin
	}
	if user.ID == actor.ID {
		return ErrCannotDeleteSelf
	}

	if err := s.userRepo.Delete(user.ID); err != nil {
		return persistence("delete user", err, ErrUserNotFound)
	}

	s.logger.Info("user deleted", zap.String("username", username), zap.Uint64("by", actor.ID))
	return nil
}

// UserTasks returns the tasks assigned to username in visibility order.
func (s *UserService) UserTasks(actor *models.User, username string) ([]models.Task, error) {
	if !actor.SeesAllTasks() {
		return nil, ErrNotUserManager
	}

	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, persistence("find user", err, ErrUserNotFound)
	}

	tasks, err := s.taskRepo.List(repository.TaskFilter{AssignedUserID: &user.ID})
	if err != nil {
		return nil, persistence("list tasks", err, nil)
	}
	return tasks, nil
}

func (s *UserService) freeDirectorEmployeeID() (string, error) {
	for i := 0; i < employeeIDAttempts; i++ {
		id, err := utils.GenerateDirectorEmployeeID()
		if err != nil {
			return "", &kindError{kind: ErrPersistence, msg: "failed to generate employee id", cause: err}
		}

		taken, err := s.userRepo.ExistsByEmployeeID(id)
		if err != nil {
			return "", persistence("check employee id", err, nil)
		}
		if !taken {
			return id, nil
		}
	}
	return "", newError(ErrPersistence, "failed to generate a unique employee id")
}
