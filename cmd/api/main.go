package main

import (
	"fmt"
	"net/http"
	"os"

	"ledgerly/internal/config"
	"ledgerly/internal/database"
	"ledgerly/internal/handlers"
	"ledgerly/internal/logger"
	"ledgerly/internal/middleware"
	"ledgerly/internal/services"
	"ledgerly/internal/store"
	"ledgerly/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "ledgerly/internal/docs" // Import swagger docs
)

// @title           Ledgerly API
// @version         1.0
// @description     Ledgerly is a personal finance tracker: budgets that roll over automatically at the end of their period, and spending insights computed from transaction history.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize stores and services
	db := dbManager.DB()
	budgetStore := store.NewBudgetStore(db)
	transactionStore := store.NewTransactionStore(db)

	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	budgetService := services.NewBudgetService(budgetStore)
	transactionService := services.NewTransactionService(transactionStore)
	rolloverService := services.NewRolloverService(budgetStore, services.NewLogNotifier(), appConfig.BudgetCarryForward)
	insightsService := services.NewInsightsService(transactionStore)
	historyService := services.NewHistoryService(budgetStore)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, rolloverService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	budgetHistoryHandler := handlers.NewBudgetHistoryHandler(rolloverService, historyService, auditService)
	insightsHandler := handlers.NewInsightsHandler(insightsService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)

	// Budget lifecycle and history routes
	history := protected.Group("/budget-history")
	history.POST("/rollover", budgetHistoryHandler.Rollover)
	history.GET("/analytics", budgetHistoryHandler.Analytics)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/insights", insightsHandler.GetInsights)
	transactions.GET("/:id", transactionHandler.GetTransaction)

	log.Infof("Starting Ledgerly backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
