package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/minhthang2k5/smart-restaurant-sub000/config"
	"github.com/minhthang2k5/smart-restaurant-sub000/controllers"
	"github.com/minhthang2k5/smart-restaurant-sub000/middleware"
	"github.com/minhthang2k5/smart-restaurant-sub000/models"
	"github.com/minhthang2k5/smart-restaurant-sub000/services"
)

func main() {
	// Basic logging
	log.Println("Starting Smart Restaurant API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.DiningTable{},
		&models.MenuItem{},
		&models.ModifierGroup{},
		&models.ModifierOption{},
		&models.Session{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemModifier{},
		&models.PaymentTransaction{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if err := services.EnsureSessionIndexes(db); err != nil {
		log.Fatalf("Failed to create session indexes: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Notification fan-out: RabbitMQ when configured, otherwise a no-op.
	// The server stays up without a broker; pushes are a UX convenience.
	if cfg.RabbitMQURL != "" {
		notifier, err := services.NewRabbitNotifier(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("RabbitMQ unavailable, notifications disabled: %v", err)
		} else {
			defer notifier.Close()
			services.InitNotifier(notifier)
			log.Println("Notification fan-out connected to RabbitMQ")
		}
	}

	// Initialize services
	services.InitSessionService(db, cfg.TaxRate)
	services.InitPaymentService(db, services.NewMomoGateway(cfg), cfg.TaxRate)

	// Initialize Gin router
	router := setupRouter(cfg)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the Gin engine with middleware and all API routes
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	if cfg.Auth0Domain != "" {
		router.Use(middleware.OptionalActor(cfg))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", controllers.CreateSession)
			sessions.GET("/table/:tableId", controllers.GetActiveSessionByTable)
			sessions.GET("/:id", controllers.GetSession)
			sessions.GET("/:id/bill", controllers.GetBill)
			sessions.POST("/:id/claim", controllers.ClaimSession)
			sessions.POST("/:id/orders", controllers.CreateOrder)
			sessions.POST("/:id/complete", middleware.RequireActor(), middleware.RequireStaff(), controllers.CompleteSession)
			sessions.POST("/:id/cancel", middleware.RequireActor(), middleware.RequireStaff(), controllers.CancelSession)
			sessions.POST("/:id/payment/momo/initiate", controllers.InitiateMomoPayment)
			sessions.POST("/:id/payment/cancel", controllers.CancelPayment)
			sessions.GET("/:id/payment/status", controllers.GetPaymentStatus)
		}

		orders := v1.Group("/orders", middleware.RequireActor(), middleware.RequireStaff())
		{
			orders.POST("/:id/accept", controllers.AcceptOrder)
			orders.POST("/:id/reject", controllers.RejectOrder)
			orders.PATCH("/:id/status", controllers.UpdateOrderStatus)
			orders.PATCH("/items/:itemId/status", controllers.UpdateItemStatus)
		}

		// Gateway webhook: no auth, authenticity rests on the payload signature
		v1.POST("/payment/momo/callback", controllers.MomoCallback)
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Smart Restaurant API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
