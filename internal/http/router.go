package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Create controllers with appropriate interfaces
	health := NewHealthController(cfg.Database, cfg.Version)
	importController := NewImportController(cfg.Importer, cfg.MaxUploadSize)
	postsController := NewPostsController(cfg.PostStore)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Import endpoints
	router.POST("/api/import", importController.Import)
	router.POST("/api/import/bulk", importController.ImportBulk)

	// Post endpoints
	router.GET("/api/posts/:id", postsController.GetPost)
	router.GET("/api/posts/:id/import-log", postsController.GetImportLog)

	// Serve stored media files
	if cfg.MediaBaseDir != "" && cfg.MediaBaseURL != "" {
		router.Static(cfg.MediaBaseURL, cfg.MediaBaseDir)
	}

	return router
}
