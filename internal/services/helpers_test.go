package services_test

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"flowerstream/internal/events"
	"flowerstream/internal/payment"
	"flowerstream/internal/repos"
	"flowerstream/internal/services"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type fixedRate struct{ r decimal.Decimal }

func (f fixedRate) Rate(context.Context) decimal.Decimal { return f.r }

type env struct {
	db       *sqlx.DB
	products *repos.ProductRepo
	orders   *repos.OrderRepo
	pending  *repos.PendingRepo
	gw       *payment.Sandbox
	events   *events.Recorder

	auth     *services.AuthService
	catalog  *services.CatalogService
	cart     *services.CartService
	favs     *services.FavoriteService
	reviews  *services.ReviewService
	checkout *services.CheckoutService
	orderSvc *services.OrderService
}

const (
	olena = "u-olena"
	taras = "u-taras"
)

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	e := &env{
		db:       db,
		products: repos.NewProductRepo(db),
		orders:   repos.NewOrderRepo(db),
		pending:  repos.NewPendingRepo(db),
		gw:       payment.NewSandbox(),
		events:   &events.Recorder{},
	}
	carts := repos.NewCartRepo(db)
	reviews := repos.NewReviewRepo(db)

	kyiv, err := time.LoadLocation("Europe/Kyiv")
	if err != nil {
		t.Fatal(err)
	}
	e.auth = services.NewAuthService(repos.NewUserRepo(db))
	e.catalog = services.NewCatalogService(e.products, reviews, kyiv)
	e.cart = services.NewCartService(db, carts, e.products)
	e.favs = services.NewFavoriteService(repos.NewFavoriteRepo(db), e.products)
	e.reviews = services.NewReviewService(reviews, e.products)
	e.orderSvc = services.NewOrderService(e.orders)
	e.checkout = &services.CheckoutService{
		DB:       db,
		Carts:    carts,
		Products: e.products,
		Orders:   e.orders,
		Pending:  e.pending,
		Gateway:  e.gw,
		Rates:    fixedRate{decimal.NewFromInt(50)},
		Events:   e.events,
		Currency: "eur",
		BaseURL:  "http://shop.test",
		TTL:      24 * time.Hour,
	}
	return e
}

func (e *env) setStock(t *testing.T, id string, stock int) {
	t.Helper()
	ctx := context.Background()
	p, err := e.products.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	p.Stock = stock
	if err := e.products.Update(ctx, p); err != nil {
		t.Fatal(err)
	}
}

func (e *env) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := e.products.Get(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	return p.Stock
}

var delivery = services.DeliveryInput{Name: "Olena Kovalenko", Address: "Khreshchatyk 1, Kyiv", Phone: "+380 (44) 123-45-67"}
