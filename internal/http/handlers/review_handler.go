package handlers

import (
	applog "flowerstream/internal/log"
	"flowerstream/internal/services"
	"flowerstream/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ReviewHandler struct {
	Reviews *services.ReviewService
}

// POST /products/:id/reviews
func (h *ReviewHandler) Add(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Params("id"))
	if !ok {
		return render(c, fiber.StatusNotFound, fiber.Map{"error": "This flower is no longer available"})
	}
	rating, ok := validate.Rating(c.FormValue("rating"))
	if !ok {
		return badRequest(c, "rating", services.ErrInvalidRating.Error())
	}
	comment := c.FormValue("comment")
	if len([]rune(comment)) > 1000 {
		return badRequest(c, "comment", "Comment is too long")
	}

	rv, err := h.Reviews.Add(c.UserContext(), currentUser(c).ID, pid, rating, comment)
	if err != nil {
		return fail(c, "review.add.fail", err, map[string]any{"product_id": pid})
	}
	applog.Audit(c, "review.add", map[string]any{"product_id": pid, "review_id": rv.ID, "rating": rating})
	return render(c, fiber.StatusCreated, fiber.Map{"review": rv})
}

// POST /reviews/:id/delete
func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return render(c, fiber.StatusNotFound, fiber.Map{"error": services.ErrReviewNotFound.Error()})
	}
	u := currentUser(c)
	rv, err := h.Reviews.Delete(c.UserContext(), u, id)
	if err != nil {
		if u.IsAdmin() {
			applog.Security(c, "review.delete.admin", map[string]any{"review_id": id})
		}
		return fail(c, "review.delete.fail", err, map[string]any{"review_id": id})
	}
	applog.Audit(c, "review.delete", map[string]any{"review_id": id, "product_id": rv.ProductID})
	return render(c, fiber.StatusOK, fiber.Map{"deleted": id, "product_id": rv.ProductID})
}
