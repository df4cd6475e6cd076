package handlers

import (
	"errors"

	"flowerstream/internal/domain"
	applog "flowerstream/internal/log"
	"flowerstream/internal/services"

	"github.com/gofiber/fiber/v2"
)

// render writes data as JSON with the logged-in user and the CSRF token for the next form.
func render(c *fiber.Ctx, status int, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := currentUser(c); u != nil {
		data["user"] = u
	}
	if tok, _ := c.Locals("csrf").(string); tok != "" {
		data["csrf_token"] = tok
	}
	return c.Status(status).JSON(data)
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

func badRequest(c *fiber.Ctx, field, msg string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return render(c, fiber.StatusBadRequest, fiber.Map{"error": msg, "field": field})
}

// fail maps service errors to a status and a message safe to show. Unknown errors are
// logged under action and answered with a generic 500.
func fail(c *fiber.Ctx, action string, err error, fields map[string]any) error {
	status, msg := classify(err)
	if status == fiber.StatusInternalServerError {
		applog.Error(c, action, err, fields)
	} else {
		if fields == nil {
			fields = map[string]any{}
		}
		fields["reason"] = msg
		applog.Info(c, action, fields)
	}
	body := fiber.Map{"error": msg}

	var se *services.StockError
	var de *services.DeliveryError
	var fe *services.FulfillmentError
	switch {
	case errors.As(err, &fe):
		body["refunded"] = fe.Refunded
	case errors.As(err, &se):
		body["product_id"] = se.ProductID
		body["available"] = se.Available
	case errors.As(err, &de):
		body["field"] = de.Field
	}
	return render(c, status, body)
}

func classify(err error) (int, string) {
	var fe *services.FulfillmentError
	if errors.As(err, &fe) {
		return fiber.StatusConflict, fe.Error()
	}
	var se *services.StockError
	if errors.As(err, &se) {
		return fiber.StatusConflict, se.Error()
	}
	var de *services.DeliveryError
	if errors.As(err, &de) {
		return fiber.StatusBadRequest, de.Error()
	}

	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidRating),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrCheckoutNotFound),
		errors.Is(err, services.ErrInvalidTransition):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrBadCreds):
		return fiber.StatusUnauthorized, err.Error()
	case errors.Is(err, services.ErrAdminReviewDelete):
		return fiber.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrReviewNotFound),
		errors.Is(err, services.ErrOrderNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrAlreadyFavorite),
		errors.Is(err, services.ErrAlreadyReviewed),
		errors.Is(err, services.ErrUsernameTaken):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, services.ErrPaymentNotCompleted):
		return fiber.StatusPaymentRequired, err.Error()
	}
	var fErr *fiber.Error
	if errors.As(err, &fErr) && fErr.Code < 500 {
		return fErr.Code, fErr.Message
	}
	return fiber.StatusInternalServerError, "Something went wrong. Please try again."
}

// ErrorHandler is the application-wide fiber error handler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, msg := classify(err)
	if status == fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
