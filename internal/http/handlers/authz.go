package handlers

import (
	applog "flowerstream/internal/log"
	"flowerstream/internal/services"

	"github.com/gofiber/fiber/v2"
)

// LoadUser attaches the session's user, if any, to c.Locals("user").
func LoadUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := auth.CurrentUser(c.UserContext(), sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}

// RequireUser rejects anonymous requests with 401.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			return render(c, fiber.StatusUnauthorized, fiber.Map{"error": "Please log in"})
		}
		return c.Next()
	}
}

func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			return render(c, fiber.StatusUnauthorized, fiber.Map{"error": "Please log in"})
		}
		if !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"user": u.Username})
			return render(c, fiber.StatusForbidden, fiber.Map{"error": "Access denied"})
		}
		return c.Next()
	}
}
