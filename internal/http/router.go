package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)
	background := NewBackgroundController(cfg.Engine, cfg.Inventory, cfg.Sales, cfg.Cursors, cfg.Runs)
	dashboard := NewDashboardController(cfg.Inventory, cfg.Sales, cfg.Doctors, cfg.Suppliers)
	doctorsController := NewDoctorsController(cfg.Doctors, cfg.Sales)
	suppliersController := NewSuppliersController(cfg.Suppliers)
	messagesController := NewMessagesController(cfg.Messages, cfg.Doctors)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Background sync endpoints
	router.GET("/api/background/status", background.Status)
	router.GET("/api/background/refresh-status", background.RefreshStatus)
	router.POST("/api/background/manual-refresh", background.ManualRefresh)
	router.POST("/api/background/sales-refresh", background.SalesRefresh)
	router.POST("/api/background/stop-refresh", background.StopRefresh)
	router.POST("/api/background/reset-cursor/:type", background.ResetCursor)
	router.GET("/api/background/history", background.History)

	// Dashboard
	router.GET("/api/dashboard/stats", dashboard.Stats)

	// Runtime settings
	if cfg.Settings != nil {
		settingsController := NewSettingsController(cfg.Settings)
		router.GET("/api/settings/sync", settingsController.Get)
		router.PUT("/api/settings/sync", settingsController.Update)
	}

	// Doctor management
	router.GET("/api/doctors", doctorsController.List)
	router.POST("/api/doctors", doctorsController.Create)
	router.GET("/api/doctors/:id", doctorsController.Get)
	router.PUT("/api/doctors/:id", doctorsController.Update)
	router.DELETE("/api/doctors/:id", doctorsController.Delete)
	router.POST("/api/doctors/:id/activate", doctorsController.Activate)
	router.GET("/api/doctors/:id/sales", doctorsController.Sales)

	// Supplier management
	router.GET("/api/suppliers", suppliersController.List)
	router.POST("/api/suppliers", suppliersController.Create)
	router.GET("/api/suppliers/:id", suppliersController.Get)
	router.PUT("/api/suppliers/:id", suppliersController.Update)
	router.DELETE("/api/suppliers/:id", suppliersController.Delete)
	router.POST("/api/suppliers/:id/activate", suppliersController.Activate)

	// Broadcast messages
	router.GET("/api/messages", messagesController.List)
	router.POST("/api/messages", messagesController.Create)
	router.GET("/api/messages/:id", messagesController.Get)
	router.POST("/api/messages/:id/delivered", messagesController.MarkDelivered)
	router.DELETE("/api/messages/:id", messagesController.Delete)

	return router
}
