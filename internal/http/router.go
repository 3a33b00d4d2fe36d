package http

import (
	"github.com/gin-gonic/gin"

	"github.com/shelfspace/bookshelf/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth configured - every request acts as the default user
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Account endpoints
	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		usersController := NewUsersController(cfg.AuthService, cfg.SessionManager)
		router.POST("/api/auth/signup", usersController.Signup)
		router.POST("/api/auth/login", usersController.Login)
		router.POST("/api/auth/logout", usersController.Logout)
		router.POST("/api/auth/token", usersController.RotateToken)
		router.GET("/api/auth/me", usersController.Me)
	}

	// Shelf endpoints
	if cfg.ShelfStore != nil {
		shelvesController := NewShelvesController(cfg.ShelfStore)
		router.GET("/api/shelves", shelvesController.ListShelves)
		router.POST("/api/shelves", shelvesController.CreateShelf)
		router.GET("/api/shelves/:id", shelvesController.GetShelf)
		router.PATCH("/api/shelves/:id", shelvesController.UpdateShelf)
		router.DELETE("/api/shelves/:id", shelvesController.DeleteShelf)
		router.POST("/api/shelves/:id/share", shelvesController.ShareShelf)
		router.DELETE("/api/shelves/:id/share", shelvesController.UnshareShelf)
	}

	// Item endpoints
	if cfg.ItemStore != nil {
		itemsController := NewItemsController(cfg.ItemStore)
		router.GET("/api/shelves/:id/items", itemsController.ListItems)
		router.POST("/api/shelves/:id/items", itemsController.CreateItem)
		router.PUT("/api/shelves/:id/items/order", itemsController.ReorderItems)
		router.PATCH("/api/items/:id", itemsController.UpdateItem)
		router.DELETE("/api/items/:id", itemsController.DeleteItem)
	}

	// Public shared shelves
	if cfg.ShareStore != nil {
		shareController := NewShareController(cfg.ShareStore)
		router.GET("/s/:token", shareController.GetSharedShelf)
	}

	// Import pipeline endpoints
	if cfg.Pipeline != nil {
		importController := NewImportController(cfg.Resolver, cfg.Enricher, cfg.Pipeline, cfg.ShelfStore, cfg.ImportConfig)
		if cfg.SessionManager != nil {
			importController.SetSessionManager(cfg.SessionManager)
		}
		if cfg.TaskClient != nil {
			importController.SetTaskClient(cfg.TaskClient)
		}
		router.POST("/api/import/parse", importController.Parse)
		router.POST("/api/import/resolve", importController.Resolve)
		router.POST("/api/import/metadata", importController.Metadata)
		router.POST("/api/import/run", importController.Run)
		router.GET("/api/import/snapshot", importController.GetSnapshot)
		router.PUT("/api/import/snapshot", importController.UpdateSnapshot)
		router.DELETE("/api/import/snapshot", importController.DiscardSnapshot)
		router.POST("/api/import/create", importController.Create)
	}

	return router
}
