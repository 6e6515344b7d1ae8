package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"review-service-server/config"
	"review-service-server/database"
	"review-service-server/gateways"
	"review-service-server/jobs"
	"review-service-server/middleware"
	"review-service-server/routes"
	"review-service-server/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	config.Load()

	// Initialize database
	if err := database.Initialize(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Set Gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Disable automatic redirects for trailing slashes
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	// Security headers and rate limiting
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.RateLimitMiddleware())

	// CORS for the externally hosted review page and admin UI
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", config.AppConfig.Review.PublicBaseURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Review Service Server is running",
			"time":    time.Now().UTC(),
		})
	})

	// Public token-addressed review endpoints
	routes.RegisterPublicReviewRoutes(router)

	// Tenant API
	api := router.Group("/api/v1")
	{
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			routes.RegisterSettingsRoutes(protected)
			routes.RegisterReviewRequestRoutes(protected)
		}
	}

	// Wire the dispatch engine with the configured gateways
	emailGateway := gateways.NewSMTPEmailGateway(config.AppConfig.SMTP)
	smsGateway := gateways.NewHTTPSMSGateway(config.AppConfig.SMS)
	ledger := services.NewTokenLedger(database.DB, config.AppConfig.Review.PublicBaseURL)
	dispatch := services.NewDispatchEngine(
		database.DB,
		ledger,
		emailGateway,
		smsGateway,
		config.AppConfig.Review.FromEmail,
		config.AppConfig.Review.FromPhone,
		config.AppConfig.Review.SendTimeout,
	)

	// Start the follow-up reconciliation job
	followUpJob := jobs.NewFollowUpJob(
		database.DB,
		dispatch,
		config.AppConfig.Review.ReconcileInterval,
		config.AppConfig.Review.WarmUpDelay,
		config.AppConfig.Review.WorkerLimit,
	)
	followUpJob.Start()
	defer followUpJob.Stop()

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run("0.0.0.0:" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
