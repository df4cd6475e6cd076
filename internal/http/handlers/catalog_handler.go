package handlers

import (
	"strings"

	"flowerstream/internal/log"
	"flowerstream/internal/repos"
	"flowerstream/internal/services"
	"flowerstream/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

// GET /?search_query=&sort=
func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	rawQ := c.Query("search_query")
	q := ""
	if strings.TrimSpace(rawQ) != "" {
		var ok bool
		if q, ok = validate.Q(rawQ); !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "search_query", "value": rawQ})
			return render(c, fiber.StatusBadRequest, fiber.Map{"error": "Enter a valid keyword (letters and numbers only)", "products": []any{}})
		}
	}
	sort := c.Query("sort", repos.DefaultSort)
	if !repos.ValidSort(sort) {
		sort = repos.DefaultSort
	}

	products, err := h.Catalog.List(c.UserContext(), q, sort)
	if err != nil {
		return fail(c, "catalog.list.fail", err, nil)
	}
	return render(c, fiber.StatusOK, fiber.Map{
		"search_query": q, "sort": sort, "products": products, "count": len(products),
	})
}

// GET /products/:id
func (h *CatalogHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return render(c, fiber.StatusNotFound, fiber.Map{"error": "This flower is no longer available"})
	}
	d, err := h.Catalog.Detail(c.UserContext(), id)
	if err != nil {
		return fail(c, "catalog.detail.fail", err, map[string]any{"product_id": id})
	}
	return render(c, fiber.StatusOK, fiber.Map{
		"product":        d.Product,
		"reviews":        d.Reviews,
		"average_rating": d.Average,
		"review_count":   d.Count,
	})
}
