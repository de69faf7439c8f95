package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"bankline/chat"
	"bankline/models"

	"github.com/gin-gonic/gin"
)

// GetAnonymousMessages returns a visitor's conversation. The session token
// is the thread id, so this is a plain thread read with offset/limit.
func GetAnonymousMessages(c *gin.Context) {
	sessionID := c.Param("sessionId")

	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil || limit < 1 {
		limit = 50
	}
	skip, err := strconv.ParseInt(c.DefaultQuery("skip", "0"), 10, 64)
	if err != nil || skip < 0 {
		skip = 0
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	messages, err := msgStore.ListByThread(ctx, sessionID, skip, limit)
	if err != nil {
		log.Printf("GetAnonymousMessages error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	c.JSON(http.StatusOK, messages)
}

// SendAnonymousMessage persists and routes a visitor message to the support
// pool. The sender is identified only by the session cookie; the router
// enforces the per-session quota.
func SendAnonymousMessage(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	receipt, err := chatRouter.Send(ctx, credentials(c), chat.SendRequest{
		Content: req.Content,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, receipt)
}
