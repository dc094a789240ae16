package middleware

import (
	"net/http"
	"strings"

	"storefront-backend/internal/shared/response"
	"storefront-backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys
const (
	ContextKeyUserID          = "user_id"
	ContextKeyEmail           = "email"
	ContextKeyRole            = "role"
	ContextKeyIsAuthenticated = "is_authenticated"
)

// HeaderAuthToken is the storefront's own token header, checked before
// the Authorization header.
const HeaderAuthToken = "x-auth-token"

// AuthMiddleware rejects requests without a valid access token
func AuthMiddleware(tokens *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Extract token
		token := extractToken(c)
		if token == "" {
			response.ErrorResponse(c, http.StatusUnauthorized, "No token, authorization denied", nil)
			c.Abort()
			return
		}

		// 2. Verify and parse
		claims, err := tokens.ValidateAccessToken(token)
		if err != nil {
			response.ErrorResponse(c, http.StatusUnauthorized, "Token is not valid", nil)
			c.Abort()
			return
		}

		// 3. Extract userID
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			response.ErrorResponse(c, http.StatusUnauthorized, "Token is not valid", nil)
			c.Abort()
			return
		}

		setIdentity(c, userID, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware identifies the user when a valid token is present
// and lets everyone else through as anonymous.
func OptionalAuthMiddleware(tokens *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyIsAuthenticated, false)

		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		// Invalid or expired token → anonymous, no error
		claims, err := tokens.ValidateAccessToken(token)
		if err != nil {
			c.Next()
			return
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.Next()
			return
		}

		setIdentity(c, userID, claims)
		c.Next()
	}
}

func setIdentity(c *gin.Context, userID uuid.UUID, claims *jwt.Claims) {
	c.Set(ContextKeyIsAuthenticated, true)
	c.Set(ContextKeyUserID, userID)
	c.Set(ContextKeyEmail, claims.Email)
	c.Set(ContextKeyRole, claims.Role)
}

func extractToken(c *gin.Context) string {
	if token := strings.TrimSpace(c.GetHeader(HeaderAuthToken)); token != "" {
		return token
	}

	// Expected format: "Bearer <token>"
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// GetAuthenticatedUserID retrieves user ID if user is authenticated
// Returns: (userID, true) if authenticated, (nil, false) if anonymous
func GetAuthenticatedUserID(c *gin.Context) (*uuid.UUID, bool) {
	if !c.GetBool(ContextKeyIsAuthenticated) {
		return nil, false
	}

	value, exists := c.Get(ContextKeyUserID)
	if !exists {
		return nil, false
	}
	uid, ok := value.(uuid.UUID)
	if !ok {
		return nil, false
	}

	return &uid, true
}
