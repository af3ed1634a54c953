package main

import (
	"database/sql"
	"fmt"
	"log"

	"civichub-service/config"
	"civichub-service/database"
	"civichub-service/handlers"
	"civichub-service/metrics"
	"civichub-service/middleware"
	"civichub-service/rabbitmq"
	"civichub-service/sentiment"
	ws "civichub-service/websocket"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Database connection
	db, err := setupDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize database schema
	log.Println("Initializing database schema...")
	if err := database.InitializeSchema(db); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	// Sentiment classifier
	classifier := sentiment.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)

	// Initialize service
	service := database.NewReportService(db, classifier)

	// Event publisher (optional)
	var publisher *rabbitmq.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = rabbitmq.NewPublisher(cfg.AMQPURL, cfg.RabbitMQExchange, cfg.RabbitMQRoutingKey)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("AMQP_URL not set, event publishing disabled")
	}

	// WebSocket hub for cache-invalidation broadcasts
	hub := ws.NewHub()
	go hub.Run()

	// Metrics
	metrics.Register()

	// Setup Gin router
	router := setupRouter(service, hub, publisher, cfg)

	// Start server
	log.Printf("CivicHub report service starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupDatabase(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&multiStatements=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Printf("ERROR: Failed to open database connection: %v", err)
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		log.Printf("ERROR: Failed to ping database: %v", err)
		return nil, err
	}

	return db, nil
}

func setupRouter(service *database.ReportService, hub *ws.Hub, publisher *rabbitmq.Publisher, cfg *config.Config) *gin.Engine {
	router := gin.Default()

	// Set trusted proxies from config
	router.SetTrustedProxies(cfg.TrustedProxies)

	// Apply global middleware
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Initialize handlers
	h := handlers.NewHandlers(service, hub, publisher)

	// Root level health check and metrics (not under /api/v3)
	router.GET("/health", h.RootHealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public API routes
	api := router.Group("/api/v3")
	{
		// Health check
		api.GET("/health", h.HealthCheck)
	}

	// Protected API routes
	protected := router.Group("/api/v3")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		protected.GET("/reports", h.GetFeed)
		protected.POST("/reports", h.CreateReport)
		protected.GET("/reports/mine", h.GetMyReports)
		protected.GET("/reports/events", h.ListenReportEvents)
		protected.GET("/reports/:id", h.GetReport)
		protected.POST("/reports/:id/upvote", h.ToggleUpvote)
		protected.GET("/reports/:id/comments", h.ListComments)
		protected.POST("/reports/:id/comments", h.CreateComment)

		// Admin triage (role enforced per operation)
		protected.GET("/admin/dashboard", h.AdminDashboard)
		protected.GET("/admin/reports/export", h.ExportReports)
		protected.PUT("/admin/reports/:id/status", h.UpdateStatus)
	}

	return router
}
