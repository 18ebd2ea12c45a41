package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/workforce-portal/internal/dto"
	apierrors "github.com/yukikurage/workforce-portal/internal/errors"
)

type AuthHandlerTestSuite struct {
	apiSuite
}

func TestAuthHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

func (suite *AuthHandlerTestSuite) signupPayload(username string) gin.H {
	return gin.H{
		"first_name":       "New",
		"last_name":        "User",
		"employee_id":      "123456789012",
		"username":         username,
		"password":         "supersecret",
		"confirm_password": "supersecret",
		"department":       "IT",
		"designation":      "employee",
	}
}

func (suite *AuthHandlerTestSuite) TestSignup() {
	w := suite.request(http.MethodPost, "/api/auth/signup", suite.signupPayload("newuser"), nil)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var user dto.UserDTO
	suite.decode(w, &user)
	suite.Equal("newuser", user.Username)
	suite.Equal("EMPLOYEE", user.Designation)
	suite.Equal("New User", user.DisplayName)
	suite.False(user.IsAdmin)
	suite.NotContains(w.Body.String(), "password")

	// Signup does not log the user in
	suite.Empty(w.Result().Cookies())

	w = suite.request(http.MethodPost, "/api/auth/signup", suite.signupPayload("newuser"), nil)
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal(apierrors.ErrCodeAlreadyExists, suite.errorCode(w))
}

func (suite *AuthHandlerTestSuite) TestSignup_Validation() {
	payload := suite.signupPayload("shortid")
	payload["employee_id"] = "42"

	w := suite.request(http.MethodPost, "/api/auth/signup", payload, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal(apierrors.ErrCodeInvalidInput, suite.errorCode(w))
}

func (suite *AuthHandlerTestSuite) TestLoginMeLogout() {
	suite.createUser("alice", "IT", "EMPLOYEE")

	w := suite.request(http.MethodGet, "/api/auth/me", nil, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	cookies := suite.login("alice")

	w = suite.request(http.MethodGet, "/api/auth/me", nil, cookies)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var me struct {
		User                 dto.UserDTO `json:"user"`
		ActiveConversationID uint64      `json:"active_conversation_id"`
	}
	suite.decode(w, &me)
	suite.Equal("alice", me.User.Username)
	suite.Zero(me.ActiveConversationID)

	w = suite.request(http.MethodPost, "/api/auth/logout", nil, cookies)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/api/auth/me", nil, w.Result().Cookies())
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *AuthHandlerTestSuite) TestLogin_InvalidCredentials() {
	suite.createUser("alice", "IT", "EMPLOYEE")

	w := suite.request(http.MethodPost, "/api/auth/login", gin.H{"username": "alice", "password": "wrong"}, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal(apierrors.ErrCodeInvalidCredentials, suite.errorCode(w))

	w = suite.request(http.MethodPost, "/api/auth/login", gin.H{"username": "nobody", "password": "secret"}, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.request(http.MethodPost, "/api/auth/login", gin.H{"username": "alice"}, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AuthHandlerTestSuite) TestDirectorLogin() {
	suite.createUser("alice", "IT", "EMPLOYEE")
	suite.createDirector("dora")

	w := suite.request(http.MethodPost, "/api/auth/director-login", gin.H{"username": "alice", "password": "secret"}, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.request(http.MethodPost, "/api/auth/director-login", gin.H{"username": "dora", "password": "secret"}, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var user dto.UserDTO
	suite.decode(w, &user)
	suite.True(user.IsDirector)
}

func (suite *AuthHandlerTestSuite) TestDeletedAccountLosesSession() {
	suite.createAdmin()
	bob := suite.createUser("bob", "IT", "EMPLOYEE")
	bobCookies := suite.login("bob")

	w := suite.request(http.MethodDelete, "/api/users/bob", nil, suite.login("admin"))
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.request(http.MethodGet, "/api/auth/me", nil, bobCookies)
	suite.Equal(http.StatusUnauthorized, w.Code)

	_, err := suite.users.FindByID(bob.ID)
	suite.Error(err)
}
