package main

import (
	"fmt"
	"time"

	"taskboard/configs"
	v1 "taskboard/internal/api/v1"
	"taskboard/internal/config"
	"taskboard/internal/middleware"
	"taskboard/internal/repository"
	"taskboard/pkg/database"
	"taskboard/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
)

func main() {
	logger.InitLoggers()
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	cfg := configs.LoadConfig()
	config.SecretKey = []byte(cfg.JWTSecret)
	config.AllowManagerComplete = cfg.AllowManagerComplete

	config.DB = database.ConnectDB(cfg)
	defer config.DB.Close()
	logger.SystemLogger.Info("Database Connected")

	repository.CreateTableIfNotExists(config.DB)
	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		repository.CreateAdminUser(config.DB, cfg.AdminUsername, cfg.AdminPassword)
		logger.SystemLogger.Info("Admin user seeded", zap.String("username", cfg.AdminUsername))
	}

	config.RedisClient = database.ConnectRedis(cfg)
	defer config.RedisClient.Close()

	app := fiber.New()

	// Middleware
	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))

	v1.RegisterRoutes(app)

	logger.SystemLogger.Info("Application ready", zap.Int("port", cfg.AppPort))
	if err := app.Listen(fmt.Sprintf(":%d", cfg.AppPort)); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
	}
}
