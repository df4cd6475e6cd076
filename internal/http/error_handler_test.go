package handlers_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"flowerstream/internal/http/handlers"
	"flowerstream/internal/services"
)

// Internal failures get a friendly body and never leak details.
func TestErrorHandlerFriendlyMessage(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Use(requestid.New())
	app.Get("/err", func(c *fiber.Ctx) error {
		return errors.New("db timeout: secret trace")
	})
	app.Get("/fiber500", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusInternalServerError, "disk full at /var/secret")
	})

	for _, path := range []string{"/err", "/fiber500"} {
		var status int
		var s string
		entries := captureLogs(t, func() {
			resp, err := app.Test(httptest.NewRequest("GET", path, nil))
			if err != nil {
				t.Fatalf("test request failed: %v", err)
			}
			status = resp.StatusCode
			body, _ := io.ReadAll(resp.Body)
			s = string(body)
		})
		if status != fiber.StatusInternalServerError {
			t.Fatalf("%s: expected 500, got %d", path, status)
		}
		if !strings.Contains(s, "Something went wrong") {
			t.Fatalf("%s: friendly message missing; body=%s", path, s)
		}
		if strings.Contains(s, "secret") {
			t.Fatalf("%s: internal details leaked to user; body=%s", path, s)
		}
		e, ok := findAction(entries, "server.error")
		if !ok || !strings.Contains(e.Err, "secret") || e.Level != "error" {
			t.Fatalf("%s: error not logged with detail: %+v", path, entries)
		}
	}
}

func TestErrorHandlerMapsServiceErrors(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	cases := map[string]struct {
		err  error
		want int
	}{
		"/stock":    {&services.StockError{ProductID: "rose-red", Name: "Red Rose", Available: 2, Requested: 5}, fiber.StatusConflict},
		"/empty":    {services.ErrEmptyCart, fiber.StatusBadRequest},
		"/missing":  {services.ErrOrderNotFound, fiber.StatusNotFound},
		"/unpaid":   {services.ErrPaymentNotCompleted, fiber.StatusPaymentRequired},
		"/admin":    {services.ErrAdminReviewDelete, fiber.StatusForbidden},
		"/notfound": {fiber.ErrNotFound, fiber.StatusNotFound},
	}
	for path, tc := range cases {
		err := tc.err
		app.Get(path, func(c *fiber.Ctx) error { return err })
	}
	for path, tc := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != tc.want {
			t.Errorf("%s: expected %d, got %d", path, tc.want, resp.StatusCode)
		}
	}
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	ta := newTestApp(t, handlers.Limits{})
	resp := ta.client(t).get("/no/such/page")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if body := decode(t, resp); body["error"] != "Page not found" {
		t.Fatalf("unexpected body: %v", body)
	}
}
