// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/javajoker/uniform-backend/internal/config"
	"github.com/javajoker/uniform-backend/internal/events"
	"github.com/javajoker/uniform-backend/internal/handlers"
	"github.com/javajoker/uniform-backend/internal/middleware"
	"github.com/javajoker/uniform-backend/internal/services"
	"github.com/javajoker/uniform-backend/internal/utils"
)

// Initialize wires services, handlers and routes. The order service is
// returned alongside the engine so the caller can hook the auto-void
// scheduler to it.
func Initialize(db *gorm.DB, cfg *config.Config, bus *events.Bus) (*gin.Engine, *services.OrderService) {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	bus.Subscribe(notificationService.HandleEvent)

	authService := services.NewAuthService(db, cfg)
	eligibilityService := services.NewEligibilityService()
	inventoryService := services.NewInventoryService(db, bus)
	itemService := services.NewItemService(db, inventoryService)
	orderService := services.NewOrderService(db, inventoryService, eligibilityService, bus)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	itemHandler := handlers.NewItemHandler(itemService, inventoryService)
	orderHandler := handlers.NewOrderHandler(orderService, authService, cfg.AutoVoid.Window())
	eligibilityHandler := handlers.NewEligibilityHandler(eligibilityService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CORS([]string{cfg.Frontend.BaseURL}))
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Catalog routes
		items := v1.Group("/items")
		{
			items.GET("", middleware.OptionalAuth(), itemHandler.GetItems)
			items.GET("/:id", middleware.OptionalAuth(), itemHandler.GetItem)

			// Staff routes
			staff := items.Group("")
			staff.Use(middleware.AuthRequired(), middleware.StaffRequired())
			{
				staff.POST("", itemHandler.CreateItem)
				staff.DELETE("/:id", itemHandler.DeleteItem)
				staff.GET("/:id/statistics", itemHandler.GetItemStatistics)
				staff.GET("/:id/movements", itemHandler.GetMovements)
				staff.POST("/:id/stock", itemHandler.AddStock)
				staff.POST("/:id/returns", itemHandler.RecordReturn)
				staff.POST("/:id/reset-baseline", itemHandler.ResetBaseline)
			}
		}

		// Order routes
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.POST("", middleware.OrderRateLimit(), orderHandler.CreateOrder)
			orders.GET("", orderHandler.GetMyOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("/:id/cancel", orderHandler.CancelOrder)
			orders.POST("/:id/confirm", orderHandler.ConfirmOrder)
			orders.PATCH("/:id/status", middleware.StaffRequired(), orderHandler.UpdateOrderStatus)
			orders.POST("/void-sweep", middleware.StaffRequired(), orderHandler.VoidSweep)
		}

		// Eligibility routes (public)
		eligibility := v1.Group("/eligibility")
		{
			eligibility.GET("", eligibilityHandler.GetMaxQuantity)
			eligibility.GET("/segment", eligibilityHandler.GetSegmentTable)
		}
	}

	return r, orderService
}
