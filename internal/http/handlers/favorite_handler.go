package handlers

import (
	"errors"

	applog "flowerstream/internal/log"
	"flowerstream/internal/services"
	"flowerstream/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type FavoriteHandler struct {
	Favs *services.FavoriteService
}

// GET /favorites
func (h *FavoriteHandler) List(c *fiber.Ctx) error {
	items, err := h.Favs.List(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return fail(c, "favorites.list.fail", err, nil)
	}
	return render(c, fiber.StatusOK, fiber.Map{"favorites": items})
}

// POST /favorites
func (h *FavoriteHandler) Add(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.FormValue("product_id"))
	if !ok {
		return badRequest(c, "product_id", "Missing product")
	}
	items, err := h.Favs.Add(c.UserContext(), currentUser(c).ID, pid)
	if errors.Is(err, services.ErrAlreadyFavorite) {
		// informational, not a failure
		items, err = h.Favs.List(c.UserContext(), currentUser(c).ID)
		if err == nil {
			return render(c, fiber.StatusConflict, fiber.Map{"error": services.ErrAlreadyFavorite.Error(), "favorites": items})
		}
	}
	if err != nil {
		return fail(c, "favorites.add.fail", err, map[string]any{"product_id": pid})
	}
	applog.Audit(c, "favorites.add", map[string]any{"product_id": pid})
	return render(c, fiber.StatusOK, fiber.Map{"favorites": items})
}

// POST /favorites/remove
func (h *FavoriteHandler) Remove(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.FormValue("product_id"))
	if !ok {
		return badRequest(c, "product_id", "Missing product")
	}
	items, err := h.Favs.Remove(c.UserContext(), currentUser(c).ID, pid)
	if err != nil {
		return fail(c, "favorites.remove.fail", err, map[string]any{"product_id": pid})
	}
	applog.Audit(c, "favorites.remove", map[string]any{"product_id": pid})
	return render(c, fiber.StatusOK, fiber.Map{"favorites": items})
}
