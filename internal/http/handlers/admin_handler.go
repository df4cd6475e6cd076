package handlers

import (
	"strings"

	"flowerstream/internal/domain"
	applog "flowerstream/internal/log"
	"flowerstream/internal/services"
	"flowerstream/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Catalog  *services.CatalogService
	Orders   *services.OrderService
	Checkout *services.CheckoutService
}

// GET /admin/products
func (h *AdminHandler) Products(c *fiber.Ctx) error {
	ps, err := h.Catalog.List(c.UserContext(), "", "newest")
	if err != nil {
		return fail(c, "admin.products.list.fail", err, nil)
	}
	return render(c, fiber.StatusOK, fiber.Map{"products": ps})
}

// GET /admin/products/:id
func (h *AdminHandler) Product(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return render(c, fiber.StatusNotFound, fiber.Map{"error": services.ErrProductNotFound.Error()})
	}
	p, err := h.Catalog.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, "admin.products.get.fail", err, map[string]any{"product_id": id})
	}
	return render(c, fiber.StatusOK, fiber.Map{"product": p})
}

// productForm reads name, description, price, stock and image_url. Field names the
// first invalid input.
func productForm(c *fiber.Ctx) (p domain.Product, field string) {
	var ok bool
	if p.Name, ok = validate.Text(c.FormValue("name"), 120); !ok {
		return p, "name"
	}
	p.Description = strings.TrimSpace(c.FormValue("description"))
	if len([]rune(p.Description)) > 2000 {
		return p, "description"
	}
	if p.Price, ok = validate.Price(c.FormValue("price")); !ok {
		return p, "price"
	}
	if p.Stock, ok = validate.Stock(c.FormValue("stock")); !ok {
		return p, "stock"
	}
	p.ImageURL = strings.TrimSpace(c.FormValue("image_url"))
	if strings.Contains(p.ImageURL, "..") || strings.HasPrefix(p.ImageURL, "/") {
		return p, "image_url"
	}
	return p, ""
}

// POST /admin/products
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	p, field := productForm(c)
	if field != "" {
		return badRequest(c, field, "Invalid "+field)
	}
	p, err := h.Catalog.Create(c.UserContext(), p)
	if err != nil {
		return fail(c, "admin.products.create.fail", err, nil)
	}
	applog.Audit(c, "admin.products.create", map[string]any{"product_id": p.ID, "name": p.Name})
	return render(c, fiber.StatusCreated, fiber.Map{"product": p})
}

// POST /admin/products/:id
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return render(c, fiber.StatusNotFound, fiber.Map{"error": services.ErrProductNotFound.Error()})
	}
	p, field := productForm(c)
	if field != "" {
		return badRequest(c, field, "Invalid "+field)
	}
	p.ID = id
	p, err := h.Catalog.Update(c.UserContext(), p)
	if err != nil {
		return fail(c, "admin.products.update.fail", err, map[string]any{"product_id": id})
	}
	applog.Audit(c, "admin.products.update", map[string]any{"product_id": id, "price": p.Price.String(), "stock": p.Stock})
	return render(c, fiber.StatusOK, fiber.Map{"product": p})
}

// POST /admin/products/:id/delete
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return render(c, fiber.StatusNotFound, fiber.Map{"error": services.ErrProductNotFound.Error()})
	}
	if err := h.Catalog.Delete(c.UserContext(), id); err != nil {
		return fail(c, "admin.products.delete.fail", err, map[string]any{"product_id": id})
	}
	applog.Audit(c, "admin.products.delete", map[string]any{"product_id": id})
	return render(c, fiber.StatusOK, fiber.Map{"deleted": id})
}

// GET /admin/orders
func (h *AdminHandler) OrdersPage(c *fiber.Ctx) error {
	ords, err := h.Orders.AdminList(c.UserContext(), 100)
	if err != nil {
		return fail(c, "admin.orders.list.fail", err, nil)
	}
	return render(c, fiber.StatusOK, fiber.Map{"orders": ords})
}

// POST /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	status := domain.OrderStatus(strings.ToLower(strings.TrimSpace(c.FormValue("status"))))
	if !ok || !status.Valid() {
		return badRequest(c, "status", "missing id or status")
	}
	o, err := h.Orders.SetStatus(c.UserContext(), id, status)
	if err != nil {
		return fail(c, "admin.orders.update.fail", err, map[string]any{"order_id": id, "status": status})
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": status})
	return render(c, fiber.StatusOK, fiber.Map{"order": o})
}

// GET /admin/checkouts/unreconciled
func (h *AdminHandler) Unreconciled(c *fiber.Ctx) error {
	stuck, err := h.Checkout.Unreconciled(c.UserContext())
	if err != nil {
		return fail(c, "admin.checkouts.list.fail", err, nil)
	}
	return render(c, fiber.StatusOK, fiber.Map{"checkouts": stuck})
}
