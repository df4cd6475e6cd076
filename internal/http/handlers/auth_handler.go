package handlers

import (
	"errors"
	"time"

	"flowerstream/internal/log"
	"flowerstream/internal/services"
	"flowerstream/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		setSID(c, sid, time.Time{})
	}
	return sid
}

func setSID(c *fiber.Ctx, sid string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false, // enable behind TLS
		Expires:  expires,
	})
}

// POST /register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	username, ok := validate.Username(c.FormValue("username"))
	if !ok {
		return badRequest(c, "username", "Username must be 3-30 letters, digits or _.-")
	}
	pass := c.FormValue("password")
	if !validate.Password(pass) {
		return badRequest(c, "password", "Password must be 8-20 characters with upper, lower, digit and symbol")
	}
	if pass != c.FormValue("confirm_password") {
		return badRequest(c, "confirm_password", "Passwords do not match")
	}

	u, err := h.Auth.Register(c.UserContext(), username, pass)
	if err != nil {
		return fail(c, "auth.register.fail", err, map[string]any{"username": username})
	}
	log.Audit(c, "auth.register", map[string]any{"username": username})
	return render(c, fiber.StatusCreated, fiber.Map{"registered": u})
}

// POST /login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	// a fresh session id on every login prevents fixation
	sid := uuid.NewString()
	username := c.FormValue("username")
	pass := c.FormValue("password")
	if _, ok := validate.Username(username); !ok || pass == "" {
		log.Security(c, "auth.login.fail", map[string]any{"username": username, "reason": "bad_format"})
		return render(c, fiber.StatusUnauthorized, fiber.Map{"error": "Invalid username or password"})
	}

	u, err := h.Auth.Login(c.UserContext(), sid, username, pass)
	if errors.Is(err, services.ErrBadCreds) {
		log.Security(c, "auth.login.fail", map[string]any{"username": username})
		return render(c, fiber.StatusUnauthorized, fiber.Map{"error": "Invalid username or password"})
	}
	if err != nil {
		return fail(c, "auth.login.error", err, nil)
	}

	if old := c.Cookies("sid"); old != "" {
		_ = h.Auth.Logout(c.UserContext(), old)
	}
	setSID(c, sid, time.Time{})
	c.Locals("user", u)
	log.Audit(c, "auth.login.success", map[string]any{"username": username})
	return render(c, fiber.StatusOK, fiber.Map{"ok": true})
}

// POST /logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	if err := h.Auth.Logout(c.UserContext(), sid); err != nil {
		return fail(c, "auth.logout.fail", err, nil)
	}
	log.Audit(c, "auth.logout", nil)
	setSID(c, "", time.Now().Add(-1*time.Hour))
	c.Locals("user", nil)
	return c.JSON(fiber.Map{"ok": true})
}
