package services

import (
	"context"
	"errors"

	"flowerstream/internal/domain"
	"flowerstream/internal/repos"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type CartService struct {
	DB       *sqlx.DB
	Carts    *repos.CartRepo
	Products *repos.ProductRepo
}

func NewCartService(db *sqlx.DB, carts *repos.CartRepo, products *repos.ProductRepo) *CartService {
	return &CartService{DB: db, Carts: carts, Products: products}
}

type CartView struct {
	Lines []domain.CartLine `json:"lines"`
	Total decimal.Decimal   `json:"total"`
	Count int               `json:"count"`
}

// View always reads the persisted cart; there is no cached copy to fall out of date.
func (s *CartService) View(ctx context.Context, userID string) (CartView, error) {
	return cartView(ctx, s.Carts, userID)
}

func cartView(ctx context.Context, carts *repos.CartRepo, userID string) (CartView, error) {
	lines, err := carts.Lines(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	v := CartView{Lines: lines, Total: decimal.Zero}
	for _, l := range lines {
		v.Total = v.Total.Add(l.Subtotal())
		v.Count += l.Qty
	}
	return v, nil
}

// Add increments the line for productID by qty, creating it if needed. The resulting
// quantity may not exceed the product's stock.
func (s *CartService) Add(ctx context.Context, userID, productID string, qty int) (CartView, error) {
	if qty < 1 {
		return CartView{}, ErrInvalidQuantity
	}
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		carts, products := s.Carts.WithTx(tx), s.Products.WithTx(tx)
		p, err := products.Get(ctx, productID)
		if err != nil {
			return err
		}
		have, err := carts.Quantity(ctx, userID, productID)
		if err != nil {
			return err
		}
		if have+qty > p.Stock {
			return &StockError{ProductID: p.ID, Name: p.Name, Available: p.Stock, Requested: have + qty}
		}
		return carts.AddItem(ctx, userID, productID, qty)
	})
	if err != nil {
		return CartView{}, mapProductErr(err)
	}
	return s.View(ctx, userID)
}

// Update sets an absolute quantity; zero or less removes the line.
func (s *CartService) Update(ctx context.Context, userID, productID string, qty int) (CartView, error) {
	if qty <= 0 {
		return s.Remove(ctx, userID, productID)
	}
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		p, err := s.Products.WithTx(tx).Get(ctx, productID)
		if err != nil {
			return err
		}
		if qty > p.Stock {
			return &StockError{ProductID: p.ID, Name: p.Name, Available: p.Stock, Requested: qty}
		}
		return s.Carts.WithTx(tx).SetItem(ctx, userID, productID, qty)
	})
	if err != nil {
		return CartView{}, mapProductErr(err)
	}
	return s.View(ctx, userID)
}

func (s *CartService) Remove(ctx context.Context, userID, productID string) (CartView, error) {
	if err := s.Carts.RemoveItem(ctx, userID, productID); err != nil {
		return CartView{}, err
	}
	return s.View(ctx, userID)
}

func mapProductErr(err error) error {
	if errors.Is(err, repos.ErrNotFound) {
		return ErrProductNotFound
	}
	return err
}
