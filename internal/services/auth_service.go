package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yukikurage/workforce-portal/internal/constants"
	"github.com/yukikurage/workforce-portal/internal/models"
	"github.com/yukikurage/workforce-portal/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrFieldsRequired     = newError(ErrValidation, "all fields are required")
	ErrReservedUsername   = newError(ErrValidation, "username 'admin' is reserved")
	ErrInvalidEmployeeID  = newError(ErrValidation, fmt.Sprintf("employee id must be exactly %d digits", constants.EmployeeIDLength))
	ErrPasswordMismatch   = newError(ErrValidation, "passwords do not match")
	ErrPasswordTooShort   = newError(ErrValidation, fmt.Sprintf("password must be at least %d characters", constants.MinPasswordLength))
	ErrInvalidDesignation = newError(ErrValidation, "designation must be one of HOD, SUB-HOD, EMPLOYEE")
	ErrUsernameTaken      = newError(ErrDuplicate, "username already exists")
	ErrEmployeeIDTaken    = newError(ErrDuplicate, "employee id already exists")
	ErrUserNotFound       = newError(ErrNotFound, "user not found")
)

var employeeIDPattern = regexp.MustCompile(fmt.Sprintf(`^[0-9]{%d}$`, constants.EmployeeIDLength))

// selfServiceDesignations are the tiers a user may pick at registration.
var selfServiceDesignations = []string{
	constants.DesignationHOD,
	constants.DesignationSubHOD,
	constants.DesignationEmployee,
}

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	FirstName       string
	LastName        string
	EmployeeID      string
	Username        string
	Password        string
	ConfirmPassword string
	Department      string
	Designation     string
}

// Signup registers a regular employee and enrols them in the broadcast chat.
func (s *AuthService) Signup(input SignupInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	employeeID := strings.TrimSpace(input.EmployeeID)
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	department := strings.TrimSpace(input.Department)
	designation := strings.ToUpper(strings.TrimSpace(input.Designation))

	if username == "" || employeeID == "" || firstName == "" || lastName == "" ||
		department == "" || designation == "" || input.Password == "" || input.ConfirmPassword == "" {
		return nil, ErrFieldsRequired
	}
	if strings.EqualFold(username, constants.AdminUsername) {
		return nil, ErrReservedUsername
	}
	if !employeeIDPattern.MatchString(employeeID) {
		return nil, ErrInvalidEmployeeID
	}
	if input.Password != input.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if !contains(selfServiceDesignations, designation) {
		return nil, ErrInvalidDesignation
	}

	if err := s.ensureAvailable(username, employeeID); err != nil {
		return nil, err
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		EmployeeID:   employeeID,
		FirstName:    firstName,
		LastName:     lastName,
		Department:   department,
		Designation:  designation,
		PasswordHash: hash,
	}

	if err := s.userRepo.CreateWithBroadcast(user); err != nil {
		return nil, persistence("create user", err, nil)
	}

	s.logger.Info("user registered", zap.String("username", user.Username), zap.Uint64("user_id", user.ID))
	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, persistence("find user", err, nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// DirectorLogin is Login restricted to accounts holding the director flag.
func (s *AuthService) DirectorLogin(input LoginInput) (*models.User, error) {
	user, err := s.Login(input)
	if err != nil {
		return nil, err
	}
	if !user.IsDirector {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, persistence("find user", err, ErrUserNotFound)
	}

	return user, nil
}

// BootstrapAdmin creates the admin account unless it already exists.
func (s *AuthService) BootstrapAdmin(password string) (*models.User, error) {
	existing, err := s.userRepo.FindByUsername(constants.AdminUsername)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, persistence("find admin", err, nil)
	}

	if len(password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	admin := &models.User{
		Username:     constants.AdminUsername,
		EmployeeID:   constants.AdminEmployeeID,
		FirstName:    "Admin",
		LastName:     "User",
		Department:   constants.DepartmentAdministration,
		Designation:  constants.DesignationAdmin,
		IsAdmin:      true,
		PasswordHash: hash,
	}

	if err := s.userRepo.CreateWithBroadcast(admin); err != nil {
		return nil, persistence("create admin", err, nil)
	}

	s.logger.Info("admin account created", zap.Uint64("user_id", admin.ID))
	return admin, nil
}

func (s *AuthService) ensureAvailable(username, employeeID string) error {
	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return persistence("check username", err, nil)
	}

	taken, err := s.userRepo.ExistsByEmployeeID(employeeID)
	if err != nil {
		return persistence("check employee id", err, nil)
	}
	if taken {
		return ErrEmployeeIDTaken
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", &kindError{kind: ErrPersistence, msg: "failed to hash password", cause: err}
	}
	return string(hashed), nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
