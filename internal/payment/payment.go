// Package payment talks to the hosted checkout provider.
package payment

import (
	"context"
	"errors"
)

var ErrSessionNotFound = errors.New("payment session not found")

// LineItem is one priced line on the hosted payment page. UnitAmount is in minor units.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

type SessionRequest struct {
	Currency   string
	Items      []LineItem
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

type Session struct {
	ID              string
	URL             string
	Paid            bool
	PaymentIntentID string
}

// Gateway is the subset of the provider API the checkout flow needs.
type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	RetrieveSession(ctx context.Context, id string) (*Session, error)
	ExpireSession(ctx context.Context, id string) error
	Refund(ctx context.Context, paymentIntentID string) error
}
