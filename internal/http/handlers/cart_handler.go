package handlers

import (
	applog "flowerstream/internal/log"
	"flowerstream/internal/services"
	"flowerstream/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart *services.CartService
}

// GET /cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	v, err := h.Cart.View(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return fail(c, "cart.view.fail", err, nil)
	}
	return render(c, fiber.StatusOK, fiber.Map{"cart": v})
}

// cartForm reads product_id and quantity. bad names the first field that failed.
func cartForm(c *fiber.Ctx, defQty string) (pid string, qty int, bad string) {
	pid, ok := validate.ID(c.FormValue("product_id"))
	if !ok {
		return "", 0, "product_id"
	}
	qty, ok = validate.Int(c.FormValue("quantity", defQty))
	if !ok {
		return "", 0, "quantity"
	}
	return pid, qty, ""
}

var cartFieldMsg = map[string]string{
	"product_id": "Missing product",
	"quantity":   "Quantity must be a whole number",
}

// POST /cart
func (h *CartHandler) Add(c *fiber.Ctx) error {
	pid, qty, bad := cartForm(c, "1")
	if bad != "" {
		return badRequest(c, bad, cartFieldMsg[bad])
	}
	v, err := h.Cart.Add(c.UserContext(), currentUser(c).ID, pid, qty)
	if err != nil {
		return fail(c, "cart.add.fail", err, map[string]any{"product_id": pid, "quantity": qty})
	}
	applog.Audit(c, "cart.add", map[string]any{"product_id": pid, "quantity": qty})
	return render(c, fiber.StatusOK, fiber.Map{"cart": v})
}

// POST /cart/update
func (h *CartHandler) Update(c *fiber.Ctx) error {
	pid, qty, bad := cartForm(c, "")
	if bad != "" {
		return badRequest(c, bad, cartFieldMsg[bad])
	}
	v, err := h.Cart.Update(c.UserContext(), currentUser(c).ID, pid, qty)
	if err != nil {
		return fail(c, "cart.update.fail", err, map[string]any{"product_id": pid, "quantity": qty})
	}
	applog.Audit(c, "cart.update", map[string]any{"product_id": pid, "quantity": qty})
	return render(c, fiber.StatusOK, fiber.Map{"cart": v})
}

// POST /cart/remove
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.FormValue("product_id"))
	if !ok {
		return badRequest(c, "product_id", "Missing product")
	}
	v, err := h.Cart.Remove(c.UserContext(), currentUser(c).ID, pid)
	if err != nil {
		return fail(c, "cart.remove.fail", err, map[string]any{"product_id": pid})
	}
	applog.Audit(c, "cart.remove", map[string]any{"product_id": pid})
	return render(c, fiber.StatusOK, fiber.Map{"cart": v})
}
