package handlers

import (
	"errors"

	applog "flowerstream/internal/log"
	"flowerstream/internal/services"
	"flowerstream/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	Orders *services.OrderService
}

// GET /orders
func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Orders.History(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return fail(c, "orders.history.fail", err, nil)
	}
	return render(c, fiber.StatusOK, fiber.Map{"orders": orders})
}

// GET /orders/:id
func (h *OrderHandler) View(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return render(c, fiber.StatusNotFound, fiber.Map{"error": services.ErrOrderNotFound.Error()})
	}
	u := currentUser(c)
	o, err := h.Orders.Detail(c.UserContext(), u, id)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			applog.Security(c, "access.denied.order", map[string]any{"order_id": id})
		}
		return fail(c, "orders.view.fail", err, map[string]any{"order_id": id})
	}
	return render(c, fiber.StatusOK, fiber.Map{"order": o})
}
