package handlers

import (
	"errors"
	"net/http"

	"bankline/chat"
	"bankline/models"
	"bankline/store"

	"github.com/gin-gonic/gin"
)

// Shared dependencies injected once at startup
var msgStore store.MessageStore
var chatRouter *chat.Router

// SetStore sets the message store used by all handlers.
func SetStore(s store.MessageStore) {
	msgStore = s
}

// SetChatRouter sets the send pipeline used by all handlers.
func SetChatRouter(r *chat.Router) {
	chatRouter = r
}

// credentials builds the chat credentials from what the middleware put in
// the request context.
func credentials(c *gin.Context) chat.Credentials {
	return chat.Credentials{
		UserID:       c.GetString("userId"),
		Role:         c.GetString("role"),
		SessionToken: c.GetString("sessionToken"),
	}
}

// writeError maps the chat error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is an internal error.
func writeError(c *gin.Context, err error) {
	var (
		validation *models.ValidationError
		identity   *models.IdentityError
		rateLimit  *models.RateLimitError
		notFound   *models.NotFoundError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Reason})
	case errors.As(err, &identity):
		c.JSON(http.StatusBadRequest, gin.H{"error": identity.Reason})
	case errors.As(err, &rateLimit):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many messages from this session"})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
