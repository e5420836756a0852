package main

import (
	"log"

	"fensterfix-backend/config"
	"fensterfix-backend/database"
	"fensterfix-backend/middlewares"
	"fensterfix-backend/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	// ---- Database
	if err := database.Connect(cfg); err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	if err := database.AutoMigrate(); err != nil {
		logger.Fatal("automigrate failed", zap.Error(err))
	}
	if err := database.Harden(); err != nil {
		logger.Fatal("schema hardening failed", zap.Error(err))
	}

	// ---- Fiber app with global error handler + body limit
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.NewErrorHandler(logger),
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
	})

	// ---- CORS
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: false, // using Bearer tokens, not cookies
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
	}))

	// ---- Global rate limiter (applies to all routes; tune via env)
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWin,
		// Default KeyGenerator = client IP; default 429 handler is fine.
	}))

	// ---- Request logging
	app.Use(middlewares.RequestLogger(logger))

	// ---- Routes
	routes.Register(app)

	// ---- Start
	logger.Info("starting API server", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
