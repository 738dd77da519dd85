package main

import (
	"context"
	"os"

	_ "backoffice/api/swagger" // swagger docs
	"backoffice/internal/database"
	"backoffice/internal/handler"
	"backoffice/internal/middleware"
	"backoffice/internal/repository"
	"backoffice/internal/service"
	"backoffice/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Merchant Back-Office API
// @version         1.0
// @description     API for merchant management, fee table pricing and settlements.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Logger = logger

	if err := godotenv.Load("configs/.env"); err != nil {
		logger.Info().Msg("no configs/.env file found, using environment")
	}

	dsn := buildDSN()

	db, err := database.NewConnection(dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	logger.Info().Msg("connected to PostgreSQL")

	// Permission middleware needs its own handle for role lookups
	middleware.InitPermissionMiddleware(db)

	// WebSocket hub feeding real-time notifications to operator sessions
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Repositories
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	merchantRepo := repository.NewMerchantRepository(db)
	feeTableRepo := repository.NewFeeTableRepository(db)
	priceRepo := repository.NewMerchantPriceRepository(db)
	settlementRepo := repository.NewSettlementRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	reportRepo := repository.NewReportRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Services
	userService := service.NewUserService(userRepo)
	roleService := service.NewRoleService(roleRepo, txManager)
	auditService := service.NewAuditService(auditRepo)
	notificationService := service.NewNotificationService(notificationRepo, wsHub, logger)
	merchantService := service.NewMerchantService(merchantRepo, auditRepo, logger)
	feeTableService := service.NewFeeTableService(feeTableRepo, auditRepo, txManager, logger)
	feeCloneService := service.NewFeeCloneService(feeTableRepo, merchantRepo, priceRepo, auditRepo, txManager, notificationService, logger)
	pricingService := service.NewPricingService(priceRepo, auditRepo, txManager, notificationService, logger)
	settlementService := service.NewSettlementService(settlementRepo, merchantRepo, auditRepo, notificationService, logger)
	reportService := service.NewReportService(reportRepo, auditRepo, logger)
	statisticsService := service.NewStatisticsService(db)

	// Seed default roles and permissions on startup
	if err := roleService.SeedDefaultRolesAndPermissions(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("failed to seed default roles")
	}

	// Handlers
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	merchantHandler := handler.NewMerchantHandler(merchantService)
	feeTableHandler := handler.NewFeeTableHandler(feeTableService, feeCloneService)
	pricingHandler := handler.NewPricingHandler(pricingService)
	settlementHandler := handler.NewSettlementHandler(settlementService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	reportHandler := handler.NewReportHandler(reportService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)
	auditHandler := handler.NewAuditHandler(auditService)

	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// API routing
	root := router.Group("")
	userHandler.RegisterRoutes(root)
	roleHandler.RegisterRoutes(root)
	merchantHandler.RegisterRoutes(root)
	feeTableHandler.RegisterRoutes(root)
	pricingHandler.RegisterRoutes(root)
	settlementHandler.RegisterRoutes(root)
	notificationHandler.RegisterRoutes(root)
	reportHandler.RegisterRoutes(root)
	statisticsHandler.RegisterRoutes(root)
	auditHandler.RegisterRoutes(root)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info().Str("port", port).Msg("server listening")
	if err := router.Run(":" + port); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func buildDSN() string {
	get := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	host := get("DB_HOST", "localhost")
	port := get("DB_PORT", "5432")
	user := get("DB_USER", "postgres")
	password := get("DB_PASSWORD", "postgres")
	name := get("DB_NAME", "postgres")
	sslMode := get("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + password + "@" + host + ":" + port + "/" + name + "?sslmode=" + sslMode
}
