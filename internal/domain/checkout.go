package domain

import "github.com/shopspring/decimal"

// CheckoutState names the steps of the checkout flow; used in logs and metrics.
type CheckoutState string

const (
	StateCartReady             CheckoutState = "cart_ready"
	StateStockValidated        CheckoutState = "stock_validated"
	StatePaymentSessionCreated CheckoutState = "payment_session_created"
	StatePaymentConfirmed      CheckoutState = "payment_confirmed"
	StateOrderPersisted        CheckoutState = "order_persisted"
	StatePaymentCancelled      CheckoutState = "payment_cancelled"
)

type Delivery struct {
	Name    string `json:"recipient_name"`
	Address string `json:"delivery_address"`
	Phone   string `json:"phone"`
}

const (
	PendingOpen         = "open"
	PendingRefunded     = "refunded"
	PendingRefundFailed = "refund_failed"
)

// PendingCheckout is the delivery data and line snapshot stashed while the customer is on the
// hosted payment page. The processor's callback only carries the session id.
type PendingCheckout struct {
	SessionID string        `db:"session_id" json:"session_id"`
	UserID    string        `db:"user_id" json:"user_id"`
	Name      string        `db:"recipient_name" json:"recipient_name"`
	Address   string        `db:"delivery_address" json:"delivery_address"`
	Phone     string        `db:"phone" json:"phone"`
	Status    string        `db:"status" json:"status"`
	CreatedAt string        `db:"created_at" json:"created_at"`
	Lines     []PendingLine `db:"-" json:"lines,omitempty"`
}

type PendingLine struct {
	SessionID string          `db:"session_id" json:"-"`
	ProductID string          `db:"product_id" json:"product_id"`
	Name      string          `db:"name" json:"name"`
	Qty       int             `db:"quantity" json:"quantity"`
	Price     decimal.Decimal `db:"price" json:"price"`
}

func (p PendingCheckout) Delivery() Delivery {
	return Delivery{Name: p.Name, Address: p.Address, Phone: p.Phone}
}

func (p PendingCheckout) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range p.Lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Qty))))
	}
	return total
}
