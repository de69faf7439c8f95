package routes

import (
	"os"
	"strings"
	"time"

	"bankline/handlers"
	"bankline/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	router := gin.Default()

	// CORS configuration - client origins come from the environment with
	// local dev fallbacks
	origins := []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5500"}
	if env := os.Getenv("CLIENT_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Anonymous visitor routes (session cookie, no auth)
	anonymous := router.Group("/anonymous")
	anonymous.Use(middleware.RateLimitMiddleware())
	anonymous.Use(middleware.AnonymousSession())
	anonymous.GET("/:sessionId", handlers.GetAnonymousMessages)
	anonymous.POST("/:sessionId/send", handlers.SendAnonymousMessage)

	// Authenticated chat routes
	chat := router.Group("/chat")
	chat.Use(middleware.JWTAuthMiddleware())

	// User thread management
	chat.GET("/user/:userId/threads", handlers.GetUserThreads)
	chat.POST("/user/:userId/thread", handlers.CreateUserThread)
	chat.POST("/user/:userId/send", handlers.SendUserMessage)
	chat.GET("/thread/:threadId", handlers.GetChatHistory)
	chat.PUT("/thread/:threadId/mark-read", handlers.MarkThreadRead)

	// Propeneer endpoints
	propeneer := chat.Group("")
	propeneer.Use(middleware.RequirePropeneer())
	propeneer.GET("/propeneer/threads", handlers.GetPropeneerThreads)
	propeneer.GET("/anonymous/threads", handlers.GetAnonymousThreads)
	propeneer.POST("/propeneer/reply/:threadId", handlers.SendPropeneerReply)
	propeneer.POST("/propeneer/reply-anonymous/:sessionId", handlers.SendPropeneerReplyToAnonymous)

	// Catch-all for undefined routes
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error": "Endpoint not found",
			"path":  c.Request.URL.Path,
		})
	})

	return router
}
