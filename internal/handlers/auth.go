package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workforce-portal/internal/dto"
	apierrors "github.com/yukikurage/workforce-portal/internal/errors"
	"github.com/yukikurage/workforce-portal/internal/models"
	"github.com/yukikurage/workforce-portal/internal/services"
	"github.com/yukikurage/workforce-portal/internal/session"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup registers a new employee. The caller still has to log in.
func (h *AuthHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		FirstName       string `json:"first_name"`
		LastName        string `json:"last_name"`
		EmployeeID      string `json:"employee_id"`
		Username        string `json:"username"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
		Department      string `json:"department"`
		Designation     string `json:"designation"`
	}

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Signup(services.SignupInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		EmployeeID:      req.EmployeeID,
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Department:      req.Department,
		Designation:     req.Designation,
	})
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	h.login(c, h.authService.Login)
}

// DirectorLogin is the login form reserved for directors.
func (h *AuthHandler) DirectorLogin(c *gin.Context) {
	h.login(c, h.authService.DirectorLogin)
}

func (h *AuthHandler) login(c *gin.Context, authenticate func(services.LoginInput) (*models.User, error)) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := authenticate(services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	if err := session.Save(c, session.FromUser(user)); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := session.Clear(c); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated user and the open conversation.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	st, _ := session.Load(c)
	c.JSON(http.StatusOK, gin.H{
		"user":                   dto.ToUserDTO(*actor),
		"active_conversation_id": st.ActiveConversationID,
	})
}
