package handlers

import (
	"errors"

	applog "flowerstream/internal/log"
	"flowerstream/internal/services"

	"github.com/gofiber/fiber/v2"
)

type CheckoutHandler struct {
	Checkout *services.CheckoutService
}

// POST /checkout
func (h *CheckoutHandler) Begin(c *fiber.Ctx) error {
	u := currentUser(c)
	in := services.DeliveryInput{
		Name:    c.FormValue("name"),
		Address: c.FormValue("address"),
		Phone:   c.FormValue("phone"),
	}
	sess, err := h.Checkout.Begin(c.UserContext(), u.ID, in)
	if err != nil {
		var de *services.DeliveryError
		if errors.As(err, &de) {
			applog.Security(c, "validation.fail", map[string]any{"field": de.Field})
		}
		return fail(c, "checkout.begin.fail", err, nil)
	}
	applog.Audit(c, "checkout.session.create", map[string]any{"session_id": sess.ID})
	return render(c, fiber.StatusOK, fiber.Map{"session_id": sess.ID, "checkout_url": sess.URL})
}

// GET /checkout/success?session_id=
func (h *CheckoutHandler) Success(c *fiber.Ctx) error {
	sid := c.Query("session_id")
	o, err := h.Checkout.Confirm(c.UserContext(), currentUser(c).ID, sid)
	if err != nil {
		var fe *services.FulfillmentError
		if errors.As(err, &fe) {
			applog.Error(c, "checkout.fulfillment.fail", err, map[string]any{"session_id": sid, "refunded": fe.Refunded})
		}
		return fail(c, "checkout.confirm.fail", err, map[string]any{"session_id": sid})
	}
	applog.Audit(c, "order.place", map[string]any{"order_id": o.ID, "total": o.Total.String(), "session_id": sid})
	return render(c, fiber.StatusOK, fiber.Map{"order": o, "message": "Thank you! Your order has been placed."})
}

// GET /checkout/cancel?session_id=
func (h *CheckoutHandler) Cancel(c *fiber.Ctx) error {
	sid := c.Query("session_id")
	if err := h.Checkout.Cancel(c.UserContext(), currentUser(c).ID, sid); err != nil {
		return fail(c, "checkout.cancel.fail", err, map[string]any{"session_id": sid})
	}
	applog.Audit(c, "checkout.cancel", map[string]any{"session_id": sid})
	return render(c, fiber.StatusOK, fiber.Map{"message": "Payment cancelled, your cart is unchanged."})
}
