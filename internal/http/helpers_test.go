package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"flowerstream/internal/config"
	"flowerstream/internal/events"
	"flowerstream/internal/http/handlers"
	"flowerstream/internal/payment"
	"flowerstream/internal/repos"
)

type fixedRate struct{}

func (fixedRate) Rate(context.Context) decimal.Decimal { return decimal.NewFromInt(50) }

type testApp struct {
	app    *fiber.App
	deps   *handlers.Deps
	db     *sqlx.DB
	gw     *payment.Sandbox
	events *events.Recorder
}

func testConfig() config.Config {
	return config.Config{
		DBDSN:           ":memory:",
		BaseURL:         "http://shop.test",
		PaymentCurrency: "eur",
		CheckoutTTL:     time.Hour,
	}
}

func newTestApp(t *testing.T, lim handlers.Limits) *testApp {
	t.Helper()
	cfg := testConfig()
	cfg.MediaDir = t.TempDir()
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ta := &testApp{db: db, gw: payment.NewSandbox(), events: &events.Recorder{}}
	ta.deps = handlers.NewDeps(db, cfg, handlers.Externals{
		Gateway: ta.gw,
		Rates:   fixedRate{},
		Events:  ta.events,
		Loc:     time.UTC,
	})
	ta.app = handlers.NewApp(ta.deps, cfg.MediaDir, lim)
	return ta
}

// client keeps cookies between requests the way a browser would.
type client struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func (ta *testApp) client(t *testing.T) *client {
	return &client{t: t, app: ta.app, cookies: map[string]string{}}
}

func (c *client) do(req *http.Request) *http.Response {
	c.t.Helper()
	for k, v := range c.cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	resp, err := c.app.Test(req, -1)
	if err != nil {
		c.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	for _, ck := range resp.Cookies() {
		if ck.Value == "" || (!ck.Expires.IsZero() && ck.Expires.Before(time.Now())) {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck.Value
	}
	return resp
}

func (c *client) get(path string) *http.Response {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// post sends a form, adding the csrf token from the cookie jar. A GET on / is made
// first when no token has been issued yet.
func (c *client) post(path string, form url.Values) *http.Response {
	c.t.Helper()
	if c.cookies["csrf_"] == "" {
		c.get("/")
	}
	// callers may share form values between tests, so the token goes on a copy
	f := url.Values{}
	for k, v := range form {
		f[k] = append([]string(nil), v...)
	}
	if f.Get("csrf") == "" {
		f.Set("csrf", c.cookies["csrf_"])
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(f.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) login(username, password string) {
	c.t.Helper()
	resp := c.post("/login", url.Values{"username": {username}, "password": {password}})
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("login %s: expected 200, got %d", username, resp.StatusCode)
	}
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("decode %q: %v", string(body), err)
	}
	return m
}

func stockOf(t *testing.T, db *sqlx.DB, productID string) int {
	t.Helper()
	var n int
	if err := db.Get(&n, `SELECT stock FROM products WHERE id=?`, productID); err != nil {
		t.Fatal(err)
	}
	return n
}
