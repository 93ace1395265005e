package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/FiifiQwontwo/PhotoIsa/internal/handlers"
	"github.com/FiifiQwontwo/PhotoIsa/internal/middleware"
	"github.com/FiifiQwontwo/PhotoIsa/internal/repository"
	"github.com/FiifiQwontwo/PhotoIsa/internal/utils"
)

func Setup(app *fiber.App, h *handlers.Handler, jwtManager *utils.JWTManager, userRepo repository.UserRepository) {
	requireAuth := middleware.RequireAuth(jwtManager)
	requireAdmin := middleware.RequireAdmin(userRepo)

	api := app.Group("/api")

	api.Post("/signup", h.Signup)
	api.Get("/verify-email/:token", h.VerifyEmail)
	api.Post("/login", h.Login)
	api.Post("/refresh", h.Refresh)

	api.Post("/logout", requireAuth, h.Logout)
	api.Get("/users", requireAuth, requireAdmin, h.ListUsers)
}
