package services

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/workforce-portal/internal/database"
	"github.com/yukikurage/workforce-portal/internal/models"
	"github.com/yukikurage/workforce-portal/internal/repository"
	"github.com/yukikurage/workforce-portal/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// serviceSuite wires every repository against a fresh in-memory database.
// Service suites embed it.
type serviceSuite struct {
	suite.Suite
	db     *gorm.DB
	blobs  *storage.FileStore
	logger *zap.Logger

	users     repository.UserRepository
	tasks     repository.TaskRepository
	notices   repository.NoticeRepository
	chats     repository.ChatRepository
	directory repository.DirectoryRepository

	nextEmployeeID int
}

// SetupTest runs before each test
func (suite *serviceSuite) SetupTest() {
	var err error

	suite.db, err = database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	suite.Require().NoError(err)

	suite.blobs = storage.NewFileStore(suite.T().TempDir())
	suite.logger = zap.NewNop()

	suite.users = repository.NewUserRepository(suite.db)
	suite.tasks = repository.NewTaskRepository(suite.db)
	suite.notices = repository.NewNoticeRepository(suite.db)
	suite.chats = repository.NewChatRepository(suite.db)
	suite.directory = repository.NewDirectoryRepository(suite.db)
	suite.nextEmployeeID = 0
}

// TearDownTest runs after each test
func (suite *serviceSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// createUser stores a user with password "secret" and broadcast membership
func (suite *serviceSuite) createUser(username, department, designation string) *models.User {
	suite.nextEmployeeID++

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	suite.Require().NoError(err)

	user := &models.User{
		Username:     username,
		EmployeeID:   fmt.Sprintf("%012d", 100000+suite.nextEmployeeID),
		FirstName:    username,
		LastName:     "Tester",
		Department:   department,
		Designation:  designation,
		PasswordHash: string(hash),
	}
	suite.Require().NoError(suite.users.CreateWithBroadcast(user))
	return user
}

func (suite *serviceSuite) createAdmin() *models.User {
	admin := suite.createUser("admin", "Administration", "Administrator")
	suite.Require().NoError(suite.db.Model(admin).Update("is_admin", true).Error)
	admin.IsAdmin = true
	return admin
}

func (suite *serviceSuite) createDirector(username string) *models.User {
	director := suite.createUser(username, "All Departments", "DIRECTOR")
	suite.Require().NoError(suite.users.SetDirector(director.ID, true))
	director.IsDirector = true
	return director
}

func (suite *serviceSuite) taskService() *TaskService {
	return NewTaskService(suite.tasks, suite.users, suite.blobs, suite.logger)
}

// storedFiles lists the regular files below a blob root
func storedFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}
