package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/zeeguu/internal/metrics"
	"github.com/mrlokans/zeeguu/internal/netcheck"
	"github.com/mrlokans/zeeguu/internal/session"
)

// RouterConfig holds the router's dependencies.
type RouterConfig struct {
	Manager *session.Manager
	Events  *EventRecorder

	// Store and Network feed the health check and may be nil.
	Store   Pinger
	Network netcheck.Monitor

	Version string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger())
	router.Use(gin.Recovery())
	router.Use(securityHeaders())

	health := NewHealthController(cfg.Store, cfg.Network, cfg.Manager.Account(), cfg.Version)
	accounts := NewAccountController(cfg.Manager)
	words := NewWordsController(cfg.Manager)
	scores := NewScoresController(cfg.Manager)
	events := NewEventsController(cfg.Events)

	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")

	api.GET("/account", accounts.GetAccount)
	api.POST("/login", accounts.Login)
	api.POST("/signup", accounts.Signup)
	api.POST("/logout", accounts.Logout)
	api.PUT("/languages/native", accounts.SetNativeLanguage)
	api.PUT("/languages/learning", accounts.SetLearningLanguage)

	api.GET("/words", words.GetWords)
	api.GET("/words/:id", words.GetWord)
	api.POST("/words/refresh", words.RefreshWords)
	api.POST("/translate", words.Translate)
	api.POST("/bookmarks", words.CreateBookmark)
	api.DELETE("/bookmarks/:id", words.DeleteBookmark)

	api.POST("/difficulty", scores.Difficulty)
	api.POST("/learnability", scores.Learnability)
	api.POST("/content", scores.Content)

	api.GET("/events", events.List)

	return router
}
