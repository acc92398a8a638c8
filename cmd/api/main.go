package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/SM8970/Earn-FF-Diamond/internal/config"
	"github.com/SM8970/Earn-FF-Diamond/internal/handlers"
	"github.com/SM8970/Earn-FF-Diamond/internal/logging"
	"github.com/SM8970/Earn-FF-Diamond/internal/middleware"
	"github.com/SM8970/Earn-FF-Diamond/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.Env)

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer redisService.Close()

	jwtService := services.NewJWTService(cfg)

	engine := services.NewRewardEngine(redisService, cfg, logging.WithComponent(logger, "rewards"))
	wsHandler := handlers.NewWebSocketHandler(engine, logging.WithComponent(logger, "ws"))
	engine.SetNotifier(wsHandler)

	// Sweep ad gates whose viewer never came back to dismiss them.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			engine.CleanupStaleGates(10 * time.Minute)
		}
	}()

	authHandler := handlers.NewAuthHandler(redisService, jwtService, engine, logging.WithComponent(logger, "auth"))
	userHandler := handlers.NewUserHandler(redisService, engine)
	rewardHandler := handlers.NewRewardHandler(engine, redisService)
	adminHandler := handlers.NewAdminHandler(redisService, cfg.AdminKey, logging.WithComponent(logger, "admin"))

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Admin-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.POST("/auth/login", authHandler.Login)
	router.GET("/auth/session", middleware.AuthMiddleware(jwtService), authHandler.RestoreSession)
	router.POST("/auth/logout", middleware.AuthMiddleware(jwtService), authHandler.Logout)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	protected.Use(middleware.RateLimitMiddleware(redisService))
	{
		protected.GET("/me", userHandler.GetCurrentUser)

		protected.GET("/ws", wsHandler.HandleWebSocket)

		rewards := protected.Group("/rewards")
		{
			rewards.GET("/state", rewardHandler.GetState)
			rewards.POST("/tap", rewardHandler.Tap)
			rewards.POST("/ad/dismiss", rewardHandler.DismissAd)
			rewards.POST("/spin", rewardHandler.Spin)
		}

		protected.POST("/redemptions", rewardHandler.Redeem)
		protected.GET("/redemptions", rewardHandler.GetRedemptions)
	}

	admin := router.Group("/admin")
	admin.Use(adminHandler.RequireKey())
	{
		admin.GET("/redemptions/pending", adminHandler.ListPending)
		admin.POST("/redemptions/:id/complete", adminHandler.CompleteRedemption)
	}

	logger.Info().Str("port", cfg.Port).Msg("server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
