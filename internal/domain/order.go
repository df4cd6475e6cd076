package domain

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
)

func (s OrderStatus) Valid() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

type Order struct {
	ID                string          `db:"id" json:"id"`
	UserID            string          `db:"user_id" json:"user_id"`
	Total             decimal.Decimal `db:"total" json:"total"`
	Status            OrderStatus     `db:"status" json:"status"`
	RecipientName     string          `db:"recipient_name" json:"recipient_name"`
	DeliveryAddress   string          `db:"delivery_address" json:"delivery_address"`
	Phone             string          `db:"phone" json:"phone"`
	CheckoutSessionID string          `db:"checkout_session_id" json:"-"`
	CreatedAt         string          `db:"created_at" json:"created_at"`
	Lines             []OrderLine     `db:"-" json:"lines,omitempty"`
}

// OrderLine keeps the unit price charged at purchase time; later product edits never touch it.
type OrderLine struct {
	OrderID   string          `db:"order_id" json:"-"`
	ProductID string          `db:"product_id" json:"product_id"`
	Name      string          `db:"name" json:"name"`
	Qty       int             `db:"quantity" json:"quantity"`
	Price     decimal.Decimal `db:"price" json:"price"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Qty)))
}
