package middleware

import (
	"storefront-backend/internal/shared/utils"

	"github.com/gin-gonic/gin"
)

const ContextKeyClientIP = "client_ip"

// ClientIPMiddleware resolves the caller's address once, honouring proxy
// headers, and stores it for the request logger.
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyClientIP, utils.ExtractClientIP(c))
		c.Next()
	}
}
