package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"bankline/chat"
	"bankline/models"

	"github.com/gin-gonic/gin"
)

// GetUserThreads returns the thread summaries for one user, newest activity
// first.
func GetUserThreads(c *gin.Context) {
	userID := c.Param("userId")
	if !maySeeUser(c, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	threads, err := msgStore.ListUserThreads(ctx, userID)
	if err != nil {
		log.Printf("GetUserThreads error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch threads"})
		return
	}
	if threads == nil {
		threads = []models.ThreadSummary{}
	}

	c.JSON(http.StatusOK, threads)
}

// CreateUserThread hands out a fresh thread id the client can attach its
// first message to.
func CreateUserThread(c *gin.Context) {
	userID := c.Param("userId")
	if !maySeeUser(c, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"threadId":  chat.NewThreadID(),
		"userId":    userID,
		"createdAt": time.Now().UTC(),
	})
}

// SendUserMessage persists and routes a message from a registered user to
// support.
func SendUserMessage(c *gin.Context) {
	userID := c.Param("userId")
	if c.GetString("userId") != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	var req struct {
		Content  string `json:"content" binding:"required"`
		ThreadID string `json:"threadId,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	receipt, err := chatRouter.Send(ctx, credentials(c), chat.SendRequest{
		SenderID: userID,
		ThreadID: req.ThreadID,
		Content:  req.Content,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

// GetChatHistory returns the full history of one thread in display order.
func GetChatHistory(c *gin.Context) {
	threadID := c.Param("threadId")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	messages, err := msgStore.ListByThread(ctx, threadID, 0, 0)
	if err != nil {
		log.Printf("GetChatHistory error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	c.JSON(http.StatusOK, messages)
}

// MarkThreadRead flags everything addressed to the caller in this thread as
// read. Safe to call repeatedly.
func MarkThreadRead(c *gin.Context) {
	threadID := c.Param("threadId")

	receiver := models.UserRoom(c.GetString("userId"))
	if c.GetString("role") == chat.RolePropeneer {
		receiver = models.AgentPool
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	updated, err := msgStore.MarkRead(ctx, threadID, receiver)
	if err != nil {
		log.Printf("MarkThreadRead error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark as read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Messages marked as read",
		"updatedCount": updated,
	})
}

// GetPropeneerThreads returns every user-initiated thread for the support
// dashboard.
func GetPropeneerThreads(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	threads, err := msgStore.ListAgentThreads(ctx)
	if err != nil {
		log.Printf("GetPropeneerThreads error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch threads"})
		return
	}
	if threads == nil {
		threads = []models.ThreadSummary{}
	}

	c.JSON(http.StatusOK, threads)
}

// GetAnonymousThreads returns one summary per visitor session with
// messages.
func GetAnonymousThreads(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	threads, err := msgStore.ListAnonymousThreads(ctx)
	if err != nil {
		log.Printf("GetAnonymousThreads error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch anonymous threads"})
		return
	}
	if threads == nil {
		threads = []models.ThreadSummary{}
	}

	c.JSON(http.StatusOK, threads)
}

// SendPropeneerReply routes a support reply into an existing thread. The
// receiver is resolved from the thread owner.
func SendPropeneerReply(c *gin.Context) {
	threadID := c.Param("threadId")

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
		SenderID: c.GetString("userId"),
		ThreadID: threadID,
		Content:  req.Content,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

// SendPropeneerReplyToAnonymous routes a support reply straight into a
// visitor's room. The visitor has no authenticated identity; the session
// token is the address and the thread.
func SendPropeneerReplyToAnonymous(c *gin.Context) {
	sessionID := c.Param("sessionId")

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
		SenderID:   c.GetString("userId"),
		ReceiverID: models.AnonRoom(sessionID).String(),
		Content:    req.Content,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

// maySeeUser allows a user to reach its own resources and propeneers to
// reach anyone's.
func maySeeUser(c *gin.Context, userID string) bool {
	return c.GetString("userId") == userID || c.GetString("role") == chat.RolePropeneer
}
