package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareAndHandler(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/products/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", Handler())

	for _, id := range []string{"rose-red", "aster"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/products/"+id, nil))
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)
	}
	CheckoutSteps.WithLabelValues("payment_confirmed").Inc()

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	text := string(body)

	// route pattern, not the raw path
	assert.Contains(t, text, `flowerstream_http_requests_total{method="GET",route="/products/:id",status="200"}`)
	assert.NotContains(t, text, `route="/products/rose-red"`)
	assert.Contains(t, text, `flowerstream_checkout_steps_total{state="payment_confirmed"}`)
}
