package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/workforce-portal/internal/errors"
	"github.com/yukikurage/workforce-portal/internal/models"
)

// RequireAdmin allows only the admin account. Must run after LoadActor.
func RequireAdmin() gin.HandlerFunc {
	return requireRole("Only admins can perform this action", func(u *models.User) bool {
		return u.IsAdmin
	})
}

// RequireAdminOrDirector allows admins and directors. Must run after LoadActor.
func RequireAdminOrDirector() gin.HandlerFunc {
	return requireRole("Only admins and directors can perform this action", func(u *models.User) bool {
		return u.SeesAllTasks()
	})
}

func requireRole(message string, allowed func(*models.User) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, exists := GetActor(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !allowed(actor) {
			apierrors.Forbidden(c, message)
			c.Abort()
			return
		}

		c.Next()
	}
}
