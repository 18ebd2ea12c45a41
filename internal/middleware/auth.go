package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workforce-portal/internal/constants"
	apierrors "github.com/yukikurage/workforce-portal/internal/errors"
	"github.com/yukikurage/workforce-portal/internal/models"
	"github.com/yukikurage/workforce-portal/internal/services"
	"github.com/yukikurage/workforce-portal/internal/session"
)

// UserLoader fetches the current state of a user row.
type UserLoader interface {
	GetUser(id uint64) (*models.User, error)
}

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := session.Load(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, st.UserID)
		c.Next()
	}
}

// LoadActor re-reads the session's user so role checks see the current flags.
// A user deleted since login is logged out.
func LoadActor(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := users.GetUser(userID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				_ = session.Clear(c)
				apierrors.Unauthorized(c, "Account no longer exists")
			} else {
				apierrors.FromService(c, err)
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyActor, user)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetActor retrieves the user loaded by LoadActor
func GetActor(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}
