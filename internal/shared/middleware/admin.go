package middleware

import (
	"storefront-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
)

const RoleAdmin = "admin"

// AdminMiddleware checks if user has admin role.
// Must run after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextKeyRole) != RoleAdmin {
			response.Forbidden(c, "Access denied: admin role required")
			c.Abort()
			return
		}

		c.Next()
	}
}
