package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	sessionCookie = "anonSession"
	// Anonymous sessions live for 7 days.
	sessionMaxAge = 7 * 24 * 60 * 60
)

// NewSessionToken returns an opaque token identifying one anonymous
// visitor. The token doubles as the visitor's thread id.
func NewSessionToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// AnonymousSession issues a session cookie to visitors that have none and
// puts the token in the request context for the handlers.
func AnonymousSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err != nil || token == "" {
			token, err = NewSessionToken()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
				c.Abort()
				return
			}
			c.SetCookie(sessionCookie, token, sessionMaxAge, "/", "", false, true)
		}

		c.Set("sessionToken", token)
		c.Next()
	}
}
