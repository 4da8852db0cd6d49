package main

import (
	"context"
	"log"

	_ "buildsite/api/swagger" // swagger docs
	"buildsite/internal/cache"
	"buildsite/internal/config"
	"buildsite/internal/database"
	"buildsite/internal/handler"
	"buildsite/internal/mailer"
	"buildsite/internal/middleware"
	"buildsite/internal/repository"
	"buildsite/internal/service"
	"buildsite/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           BuildSite API
// @version         1.0
// @description     Multi-tenant construction site management backend: sites, warehouses, supplies, workers and supply-request approvals.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	var logger *zap.Logger
	var err error
	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Logger initialization failed: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	logger.Info("connected to PostgreSQL")

	statsCache := cache.New(cfg.RedisAddress, logger)
	mail := mailer.New(context.Background(), cfg.SESRegion, cfg.SESFromEmail, logger)

	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Repository -> Service -> Handler
	txManager := repository.NewTransactionManager(db)
	companyRepo := repository.NewCompanyRepository(db)
	userRepo := repository.NewUserRepository(db)
	siteRepo := repository.NewSiteRepository(db)
	warehouseRepo := repository.NewWarehouseRepository(db)
	requestRepo := repository.NewSupplyRequestRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	activityLogger := service.NewActivityLogger(activityRepo, userRepo, siteRepo, warehouseRepo, logger)

	userService := service.NewUserService(userRepo, companyRepo, siteRepo, warehouseRepo, txManager, activityLogger, mail, logger, []byte(cfg.JWTSecret))
	siteService := service.NewSiteService(siteRepo, userRepo, txManager, activityLogger, wsHub, logger)
	warehouseService := service.NewWarehouseService(warehouseRepo, userRepo, txManager, activityLogger, logger)
	requestService := service.NewSupplyRequestService(requestRepo, warehouseRepo, siteRepo, userRepo, txManager, activityLogger, wsHub, statsCache, mail, logger, cfg.StrictReject)
	messageService := service.NewMessageService(messageRepo, siteRepo, userRepo, wsHub, logger)
	activityService := service.NewActivityService(activityRepo, userRepo)
	statsService := service.NewStatsService(siteRepo, warehouseRepo, userRepo, requestRepo, statsCache, logger)

	userHandler := handler.NewUserHandler(userService)
	siteHandler := handler.NewSiteHandler(siteService)
	warehouseHandler := handler.NewWarehouseHandler(warehouseService)
	requestHandler := handler.NewSupplyRequestHandler(requestService)
	messageHandler := handler.NewMessageHandler(messageService)
	activityHandler := handler.NewActivityHandler(activityService)
	statsHandler := handler.NewStatsHandler(statsService)

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	root := router.Group("")
	userHandler.RegisterRoutes(root)
	siteHandler.RegisterRoutes(root)
	warehouseHandler.RegisterRoutes(root)
	requestHandler.RegisterRoutes(root)
	messageHandler.RegisterRoutes(root)
	activityHandler.RegisterRoutes(root)
	statsHandler.RegisterRoutes(root)

	logger.Info("server starting", zap.String("port", cfg.ServerPort))
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
