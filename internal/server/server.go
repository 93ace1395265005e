package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/FiifiQwontwo/PhotoIsa/internal/config"
	"github.com/FiifiQwontwo/PhotoIsa/internal/handlers"
	"github.com/FiifiQwontwo/PhotoIsa/internal/middleware"
	"github.com/FiifiQwontwo/PhotoIsa/internal/repository"
	"github.com/FiifiQwontwo/PhotoIsa/internal/routes"
	"github.com/FiifiQwontwo/PhotoIsa/internal/utils"
)

// New initializes the Fiber application with config, middlewares, and routes.
func New(cfg *config.Config, h *handlers.Handler, jwtManager *utils.JWTManager, userRepo repository.UserRepository, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
		IdleTimeout:  cfg.App.IdleTimeout,
	})

	app.Use(cors.New())
	app.Use(middleware.RequestLogger(logger.Sugar()))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	routes.Setup(app, h, jwtManager, userRepo)

	return app
}
