package handlers

import (
	"time"

	"flowerstream/internal/config"
	"flowerstream/internal/events"
	"flowerstream/internal/payment"
	"flowerstream/internal/repos"
	"flowerstream/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/jmoiron/sqlx"
)

// External collaborators that main chooses based on configuration.
type Externals struct {
	Gateway payment.Gateway
	Rates   services.RateSource
	Events  events.Publisher
	Loc     *time.Location
}

type Deps struct {
	Auth *services.AuthService

	AuthHandler     *AuthHandler
	CatalogHandler  *CatalogHandler
	CartHandler     *CartHandler
	FavoriteHandler *FavoriteHandler
	ReviewHandler   *ReviewHandler
	CheckoutHandler *CheckoutHandler
	OrderHandler    *OrderHandler
	AdminHandler    *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, ext Externals) *Deps {
	userRepo := repos.NewUserRepo(db)
	prodRepo := repos.NewProductRepo(db)
	cartRepo := repos.NewCartRepo(db)
	favRepo := repos.NewFavoriteRepo(db)
	reviewRepo := repos.NewReviewRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	pendingRepo := repos.NewPendingRepo(db)

	authSvc := services.NewAuthService(userRepo)
	catalogSvc := services.NewCatalogService(prodRepo, reviewRepo, ext.Loc)
	cartSvc := services.NewCartService(db, cartRepo, prodRepo)
	favSvc := services.NewFavoriteService(favRepo, prodRepo)
	reviewSvc := services.NewReviewService(reviewRepo, prodRepo)
	orderSvc := services.NewOrderService(orderRepo)
	checkoutSvc := &services.CheckoutService{
		DB:       db,
		Carts:    cartRepo,
		Products: prodRepo,
		Orders:   orderRepo,
		Pending:  pendingRepo,
		Gateway:  ext.Gateway,
		Rates:    ext.Rates,
		Events:   ext.Events,
		Currency: cfg.PaymentCurrency,
		BaseURL:  cfg.BaseURL,
		TTL:      cfg.CheckoutTTL,
	}

	return &Deps{
		Auth:            authSvc,
		AuthHandler:     &AuthHandler{Auth: authSvc},
		CatalogHandler:  &CatalogHandler{Catalog: catalogSvc},
		CartHandler:     &CartHandler{Cart: cartSvc},
		FavoriteHandler: &FavoriteHandler{Favs: favSvc},
		ReviewHandler:   &ReviewHandler{Reviews: reviewSvc},
		CheckoutHandler: &CheckoutHandler{Checkout: checkoutSvc},
		OrderHandler:    &OrderHandler{Orders: orderSvc},
		AdminHandler:    &AdminHandler{Catalog: catalogSvc, Orders: orderSvc, Checkout: checkoutSvc},
	}
}

// Mount registers the storefront routes. Global middleware (request id, csrf, LoadUser)
// is expected to be installed on app already.
func (d *Deps) Mount(app *fiber.App, loginLimit fiber.Handler) {
	if loginLimit == nil {
		loginLimit = limiter.New(limiter.Config{Max: 5, Expiration: 10 * time.Minute})
	}

	app.Get("/", d.CatalogHandler.Home)
	app.Get("/products/:id", d.CatalogHandler.Detail)

	app.Post("/register", d.AuthHandler.Register)
	app.Post("/login", loginLimit, d.AuthHandler.Login)
	app.Post("/logout", d.AuthHandler.Logout)

	user := RequireUser()
	app.Get("/cart", user, d.CartHandler.View)
	app.Post("/cart", user, d.CartHandler.Add)
	app.Post("/cart/update", user, d.CartHandler.Update)
	app.Post("/cart/remove", user, d.CartHandler.Remove)

	app.Get("/favorites", user, d.FavoriteHandler.List)
	app.Post("/favorites", user, d.FavoriteHandler.Add)
	app.Post("/favorites/remove", user, d.FavoriteHandler.Remove)

	app.Post("/products/:id/reviews", user, d.ReviewHandler.Add)
	app.Post("/reviews/:id/delete", user, d.ReviewHandler.Delete)

	app.Post("/checkout", user, d.CheckoutHandler.Begin)
	app.Get("/checkout/success", user, d.CheckoutHandler.Success)
	app.Get("/checkout/cancel", user, d.CheckoutHandler.Cancel)

	app.Get("/orders", user, d.OrderHandler.History)
	app.Get("/orders/:id", user, d.OrderHandler.View)

	admin := app.Group("/admin", RequireAdmin())
	admin.Get("/products", d.AdminHandler.Products)
	admin.Post("/products", d.AdminHandler.CreateProduct)
	admin.Get("/products/:id", d.AdminHandler.Product)
	admin.Post("/products/:id", d.AdminHandler.UpdateProduct)
	admin.Post("/products/:id/delete", d.AdminHandler.DeleteProduct)
	admin.Get("/orders", d.AdminHandler.OrdersPage)
	admin.Post("/orders/:id/status", d.AdminHandler.UpdateOrderStatus)
	admin.Get("/checkouts/unreconciled", d.AdminHandler.Unreconciled)
}
