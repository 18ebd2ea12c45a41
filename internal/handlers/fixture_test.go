package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/workforce-portal/internal/constants"
	"github.com/yukikurage/workforce-portal/internal/database"
	"github.com/yukikurage/workforce-portal/internal/models"
	"github.com/yukikurage/workforce-portal/internal/repository"
	"github.com/yukikurage/workforce-portal/internal/services"
	"github.com/yukikurage/workforce-portal/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// apiSuite runs the real API routes against an in-memory database and a
// cookie session store. Handler suites embed it.
type apiSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	users  repository.UserRepository
	svc    Services

	nextEmployeeID int
}

// upload is one file of a multipart request
type upload struct {
	field    string
	filename string
	content  []byte
}

// SetupTest runs before each test
func (suite *apiSuite) SetupTest() {
	var err error

	suite.db, err = database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	suite.Require().NoError(err)

	logger := zap.NewNop()
	blobs := storage.NewFileStore(suite.T().TempDir())

	suite.users = repository.NewUserRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)
	chatRepo := repository.NewChatRepository(suite.db)

	suite.svc = Services{
		Auth:      services.NewAuthService(suite.users, logger),
		Users:     services.NewUserService(suite.users, taskRepo, logger),
		Directory: services.NewDirectoryService(repository.NewDirectoryRepository(suite.db), logger),
		Tasks:     services.NewTaskService(taskRepo, suite.users, blobs, logger),
		Imports:   services.NewImportService(taskRepo, suite.users, logger),
		Notices:   services.NewNoticeService(repository.NewNoticeRepository(suite.db), blobs, logger),
		Chat:      services.NewChatService(chatRepo, suite.users, blobs, logger),
		Reports:   services.NewReportService(suite.users, taskRepo, logger),
	}
	suite.nextEmployeeID = 0

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.router.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	RegisterRoutes(suite.router.Group("/api"), suite.svc)
}

// TearDownTest runs after each test
func (suite *apiSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// createUser stores a user with password "secret"
func (suite *apiSuite) createUser(username, department, designation string) *models.User {
	suite.nextEmployeeID++

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	suite.Require().NoError(err)

	user := &models.User{
		Username:     username,
		EmployeeID:   fmt.Sprintf("%012d", 200000+suite.nextEmployeeID),
		FirstName:    username,
		LastName:     "Tester",
		Department:   department,
		Designation:  designation,
		PasswordHash: string(hash),
	}
	suite.Require().NoError(suite.users.CreateWithBroadcast(user))
	return user
}

func (suite *apiSuite) createAdmin() *models.User {
	admin := suite.createUser(constants.AdminUsername, constants.DepartmentAdministration, constants.DesignationAdmin)
	suite.Require().NoError(suite.db.Model(admin).Update("is_admin", true).Error)
	admin.IsAdmin = true
	return admin
}

func (suite *apiSuite) createDirector(username string) *models.User {
	director := suite.createUser(username, constants.DepartmentAllDepartments, constants.DesignationDirector)
	suite.Require().NoError(suite.users.SetDirector(director.ID, true))
	director.IsDirector = true
	return director
}

// login signs username in and returns the session cookies
func (suite *apiSuite) login(username string) []*http.Cookie {
	w := suite.request(http.MethodPost, "/api/auth/login", gin.H{"username": username, "password": "secret"}, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	return w.Result().Cookies()
}

// request sends body as JSON, or no body when it is nil
func (suite *apiSuite) request(method, path string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return suite.serve(req, cookies)
}

// multipartRequest sends fields and files as multipart/form-data
func (suite *apiSuite) multipartRequest(method, path string, fields map[string]string, files []upload, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		suite.Require().NoError(mw.WriteField(k, v))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.filename)
		suite.Require().NoError(err)
		_, err = part.Write(f.content)
		suite.Require().NoError(err)
	}
	suite.Require().NoError(mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return suite.serve(req, cookies)
}

func (suite *apiSuite) serve(req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// decode unmarshals the response body into v
func (suite *apiSuite) decode(w *httptest.ResponseRecorder, v interface{}) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

// errorCode returns the code of an error response
func (suite *apiSuite) errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	suite.decode(w, &body)
	return body.Code
}
