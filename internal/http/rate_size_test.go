package handlers_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flowerstream/internal/http/handlers"
)

func TestGlobalRateLimit(t *testing.T) {
	ta := newTestApp(t, handlers.Limits{PerMinute: 3})
	c := ta.client(t)

	entries := captureLogs(t, func() {
		for i := 0; i < 4; i++ {
			resp := c.get("/")
			if i < 3 && resp.StatusCode == http.StatusTooManyRequests {
				t.Fatalf("hit rate limit too early at %d", i)
			}
			if i == 3 && resp.StatusCode != http.StatusTooManyRequests {
				t.Fatalf("expected 429 after limit, got %d", resp.StatusCode)
			}
		}
	})
	if _, ok := findAction(entries, "rate.global.hit"); !ok {
		t.Fatal("rate.global.hit not logged")
	}

	// health and metrics stay reachable for probes
	if resp := c.get("/healthz"); resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz throttled: %d", resp.StatusCode)
	}
}

// Oversized POST rejected with 413
func TestBodySizeLimit(t *testing.T) {
	ta := newTestApp(t, handlers.Limits{})
	c := ta.client(t)
	c.get("/")

	oversize := bytes.Repeat([]byte("A"), (1<<20)+10)
	req := httptest.NewRequest("POST", "/cart", bytes.NewReader(oversize))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: c.cookies["csrf_"]})
	resp, err := ta.app.Test(req, -1)
	// fasthttp may refuse the body before fiber sees it
	if err != nil {
		if strings.Contains(err.Error(), "body size exceeds") || strings.Contains(err.Error(), "too large") {
			return
		}
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 413 for oversize, got %d body=%s", resp.StatusCode, string(body))
	}
}

func TestMediaBlocksTraversal(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "products"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "products", "flower1.jpg"), []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	ta := newTestApp(t, handlers.Limits{})
	app := handlers.NewApp(ta.deps, dir, handlers.Limits{})

	resp, err := app.Test(httptest.NewRequest("GET", "/media/products/flower1.jpg", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("image: expected 200, got %d", resp.StatusCode)
	}

	entries := captureLogs(t, func() {
		for _, p := range []string{
			"/media/..%2f..%2fetc/passwd",
			"/media/%2e%2e/secret",
			"/media/...",
			"/media/products/..flower1.jpg",
		} {
			resp, err := app.Test(httptest.NewRequest("GET", p, nil))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != http.StatusNotFound {
				t.Fatalf("%s: expected 404, got %d", p, resp.StatusCode)
			}
		}
	})
	if _, ok := findAction(entries, "media.traversal.block"); !ok {
		t.Fatal("media.traversal.block not logged")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ta := newTestApp(t, handlers.Limits{})
	c := ta.client(t)
	c.get("/")

	resp := c.get("/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "flowerstream_http_requests_total") {
		t.Fatalf("request counter missing from /metrics")
	}
}
