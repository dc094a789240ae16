package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ===================================
// CONSTANTS
// ===================================

const (
	// Cookie settings
	SessionCookieName = "session_id"
	SessionMaxAge     = 60 * 60 * 24 * 30 // 30 days in seconds

	ContextKeySessionID = "session_id"
)

// SessionConfig holds cookie settings for the guest session
type SessionConfig struct {
	CookieDomain   string // "" for current domain
	CookiePath     string
	CookieSecure   bool // true for HTTPS only
	CookieSameSite http.SameSite
}

// DefaultSessionConfig returns secure default configuration
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		CookiePath:     "/",
		CookieSecure:   true,
		CookieSameSite: http.SameSiteLaxMode,
	}
}

// ===================================
// SESSION MIDDLEWARE
// ===================================

// SessionMiddleware gives every caller a stable guest session id.
//
// Flow:
// 1. Read session_id cookie
// 2. Missing or malformed → generate a new UUID and set the cookie
// 3. Store the id in context for handlers
//
// Logged-in callers keep their session too, so a later sync can find the
// guest cart they built before logging in.
func SessionMiddleware(config SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := sessionFromCookie(c)
		if sessionID == "" {
			sessionID = uuid.New().String()
			setSessionCookie(c, sessionID, config)
		}

		c.Set(ContextKeySessionID, sessionID)
		c.Next()
	}
}

// sessionFromCookie retrieves session ID from cookie
func sessionFromCookie(c *gin.Context) string {
	sessionID, err := c.Cookie(SessionCookieName)
	if err != nil || sessionID == "" {
		return ""
	}

	// Validate UUID format so arbitrary strings never reach Redis keys
	if _, err := uuid.Parse(sessionID); err != nil {
		return ""
	}

	return sessionID
}

func setSessionCookie(c *gin.Context, sessionID string, config SessionConfig) {
	c.SetSameSite(config.CookieSameSite)
	c.SetCookie(
		SessionCookieName,
		sessionID,
		SessionMaxAge,
		config.CookiePath,
		config.CookieDomain,
		config.CookieSecure,
		true, // httpOnly
	)
}

// GetSessionID retrieves session ID from context
func GetSessionID(c *gin.Context) string {
	return c.GetString(ContextKeySessionID)
}
