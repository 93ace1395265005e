package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/FiifiQwontwo/PhotoIsa/internal/repository"
	"github.com/FiifiQwontwo/PhotoIsa/internal/utils"
)

// RequireAuth validates the Bearer access token and stores the account ID
// in the request context for downstream handlers.
func RequireAuth(jwtManager *utils.JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get(fiber.HeaderAuthorization)
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or invalid authorization header",
			})
		}

		claims, err := jwtManager.Parse(strings.TrimPrefix(h, "Bearer "))
		if err != nil || claims.Kind != utils.TokenKindAccess {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token",
			})
		}

		c.Locals("user_id", claims.UserID)
		return c.Next()
	}
}

// RequireAdmin gates a route to accounts carrying the admin flag. Must run
// after RequireAuth.
func RequireAdmin(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("user_id").(uint)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthenticated",
			})
		}

		user, err := userRepo.FindByID(c.Context(), userID)
		if err != nil || !user.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "forbidden",
			})
		}
		return c.Next()
	}
}
