package services

import (
	"context"
	"errors"
	"time"

	"flowerstream/internal/domain"
	"flowerstream/internal/events"
	applog "flowerstream/internal/log"
	"flowerstream/internal/metrics"
	"flowerstream/internal/payment"
	"flowerstream/internal/rates"
	"flowerstream/internal/repos"
	"flowerstream/internal/validate"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// RateSource yields base-currency units per unit of the payment currency.
type RateSource interface {
	Rate(ctx context.Context) decimal.Decimal
}

// CheckoutService drives a cart through
// cart_ready -> stock_validated -> payment_session_created -> payment_confirmed -> order_persisted,
// or -> payment_cancelled.
type CheckoutService struct {
	DB       *sqlx.DB
	Carts    *repos.CartRepo
	Products *repos.ProductRepo
	Orders   *repos.OrderRepo
	Pending  *repos.PendingRepo

	Gateway payment.Gateway
	Rates   RateSource
	Events  events.Publisher

	Currency string        // payment currency, lower-case ISO code
	BaseURL  string        // absolute base for callback URLs
	TTL      time.Duration // pending checkouts older than this are discarded
	Now      func() time.Time
}

func (s *CheckoutService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func step(st domain.CheckoutState) { metrics.CheckoutSteps.WithLabelValues(string(st)).Inc() }

func fail(reason string) { metrics.CheckoutFailures.WithLabelValues(reason).Inc() }

type DeliveryInput struct {
	Name    string
	Address string
	Phone   string
}

// Validate checks delivery details and returns them trimmed.
func (d DeliveryInput) Validate() (domain.Delivery, error) {
	name, ok := validate.Text(d.Name, 100)
	if !ok {
		return domain.Delivery{}, &DeliveryError{Field: "name"}
	}
	addr, ok := validate.Text(d.Address, 255)
	if !ok {
		return domain.Delivery{}, &DeliveryError{Field: "address"}
	}
	phone, ok := validate.Phone(d.Phone)
	if !ok {
		return domain.Delivery{}, &DeliveryError{Field: "phone"}
	}
	return domain.Delivery{Name: name, Address: addr, Phone: phone}, nil
}

// Begin validates the cart and delivery details, opens a hosted payment session and stashes
// the delivery details with a price snapshot under the session id. Nothing is written
// unless every check passes.
func (s *CheckoutService) Begin(ctx context.Context, userID string, in DeliveryInput) (*payment.Session, error) {
	s.discardStale(ctx, userID)

	cart, err := cartView(ctx, s.Carts, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		fail("empty_cart")
		return nil, ErrEmptyCart
	}
	step(domain.StateCartReady)

	for _, l := range cart.Lines {
		if l.Qty > l.Stock {
			fail("stock")
			return nil, &StockError{ProductID: l.ProductID, Name: l.Name, Available: l.Stock, Requested: l.Qty}
		}
	}
	step(domain.StateStockValidated)

	d, err := in.Validate()
	if err != nil {
		fail("delivery")
		return nil, err
	}

	rate := s.Rates.Rate(ctx)
	req := payment.SessionRequest{
		Currency:   s.Currency,
		SuccessURL: s.BaseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.BaseURL + "/checkout/cancel",
		Metadata:   map[string]string{"user_id": userID, "rate": rate.String()},
	}
	pending := domain.PendingCheckout{UserID: userID, Name: d.Name, Address: d.Address, Phone: d.Phone}
	for _, l := range cart.Lines {
		req.Items = append(req.Items, payment.LineItem{
			Name:       l.Name,
			UnitAmount: rates.MinorUnits(l.Price, rate),
			Quantity:   int64(l.Qty),
		})
		pending.Lines = append(pending.Lines, domain.PendingLine{
			ProductID: l.ProductID, Name: l.Name, Qty: l.Qty, Price: l.Price,
		})
	}

	sess, err := s.Gateway.CreateSession(ctx, req)
	if err != nil {
		fail("payment")
		return nil, err
	}
	pending.SessionID = sess.ID
	if err := s.Pending.Save(ctx, pending); err != nil {
		if xerr := s.Gateway.ExpireSession(ctx, sess.ID); xerr != nil {
			applog.Error(nil, "checkout.session.expire", xerr, map[string]any{"session_id": sess.ID})
		}
		return nil, err
	}
	step(domain.StatePaymentSessionCreated)
	return sess, nil
}

// Confirm turns a paid session into an order. The order, its lines, the stock decrements,
// the cart clear and the pending delete commit together or not at all. If they cannot
// commit the payment is refunded.
func (s *CheckoutService) Confirm(ctx context.Context, userID, sessionID string) (*domain.Order, error) {
	if sessionID == "" {
		return nil, ErrCheckoutNotFound
	}
	pending, err := s.Pending.Get(ctx, sessionID, userID)
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return nil, ErrCheckoutNotFound
		}
		return nil, err
	}
	if pending.Status != domain.PendingOpen {
		return nil, ErrCheckoutNotFound
	}
	if s.expired(*pending) {
		return nil, s.settleExpired(ctx, pending)
	}

	sess, err := s.Gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, payment.ErrSessionNotFound) {
			return nil, ErrCheckoutNotFound
		}
		return nil, err
	}
	if !sess.Paid {
		fail("unpaid")
		return nil, ErrPaymentNotCompleted
	}
	step(domain.StatePaymentConfirmed)

	d := pending.Delivery()
	order := &domain.Order{
		UserID:            userID,
		Total:             pending.Total(),
		Status:            domain.OrderStatusPending,
		RecipientName:     d.Name,
		DeliveryAddress:   d.Address,
		Phone:             d.Phone,
		CheckoutSessionID: sessionID,
	}
	for _, l := range pending.Lines {
		order.Lines = append(order.Lines, domain.OrderLine{ProductID: l.ProductID, Name: l.Name, Qty: l.Qty, Price: l.Price})
	}

	err = repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		if err := s.Orders.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		products := s.Products.WithTx(tx)
		for _, l := range order.Lines {
			if err := products.DecrementStock(ctx, l.ProductID, l.Qty); err != nil {
				var ise *repos.InsufficientStockError
				if errors.As(err, &ise) {
					p, _ := products.Get(ctx, l.ProductID)
					return &StockError{ProductID: l.ProductID, Name: l.Name, Available: p.Stock, Requested: l.Qty}
				}
				return err
			}
		}
		if err := s.Carts.WithTx(tx).Clear(ctx, userID); err != nil {
			return err
		}
		return s.Pending.WithTx(tx).Delete(ctx, sessionID, userID)
	})
	if errors.Is(err, repos.ErrDuplicate) {
		// a concurrent callback for the same session already placed the order
		return s.Orders.BySession(ctx, sessionID)
	}
	if err != nil {
		return nil, s.compensate(ctx, pending, sess, err)
	}

	step(domain.StateOrderPersisted)
	metrics.OrdersPlaced.Inc()
	metrics.OrderRevenue.Add(order.Total.InexactFloat64())
	s.publish(ctx, order)
	return order, nil
}

// compensate refunds a charge whose order could not be stored. A failed refund leaves the
// pending checkout marked refund_failed for manual follow-up.
func (s *CheckoutService) compensate(ctx context.Context, p *domain.PendingCheckout, sess *payment.Session, cause error) error {
	fail("fulfillment")
	fields := map[string]any{"session_id": p.SessionID, "user_id": p.UserID, "total": p.Total().String()}

	rerr := s.Gateway.Refund(ctx, sess.PaymentIntentID)
	if rerr == nil {
		if err := s.Pending.SetStatus(ctx, p.SessionID, domain.PendingRefunded); err != nil {
			applog.Error(nil, "checkout.pending.status", err, fields)
		}
		applog.Audit(nil, "checkout.refunded", fields)
		return &FulfillmentError{Refunded: true, Err: cause}
	}

	fail("refund")
	if err := s.Pending.SetStatus(ctx, p.SessionID, domain.PendingRefundFailed); err != nil {
		applog.Error(nil, "checkout.pending.status", err, fields)
	}
	fields["cause"] = cause.Error()
	applog.Error(nil, "checkout.unreconciled", rerr, fields)
	return &FulfillmentError{Refunded: false, Err: cause}
}

func (s *CheckoutService) publish(ctx context.Context, o *domain.Order) {
	if s.Events == nil {
		return
	}
	ev := domain.OrderPlacedEvent{
		OrderID:   o.ID,
		UserID:    o.UserID,
		Total:     o.Total.String(),
		Lines:     o.Lines,
		Timestamp: s.now().UTC(),
	}
	if err := s.Events.Publish(ctx, o.ID, ev); err != nil {
		applog.Error(nil, "events.order.placed", err, map[string]any{"order_id": o.ID})
	}
}

// Cancel discards the stashed checkout and expires the hosted session. The cart is left
// as it was. With no session id every open checkout of the user is discarded.
func (s *CheckoutService) Cancel(ctx context.Context, userID, sessionID string) error {
	var ids []string
	if sessionID != "" {
		ids = []string{sessionID}
	} else {
		open, err := s.Pending.Open(ctx, userID)
		if err != nil {
			return err
		}
		for _, p := range open {
			ids = append(ids, p.SessionID)
		}
	}
	for _, id := range ids {
		if err := s.discard(ctx, userID, id); err != nil {
			return err
		}
	}
	step(domain.StatePaymentCancelled)
	return nil
}

func (s *CheckoutService) discard(ctx context.Context, userID, sessionID string) error {
	p, err := s.Pending.Get(ctx, sessionID, userID)
	if errors.Is(err, repos.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if p.Status != domain.PendingOpen {
		return nil
	}
	if err := s.Pending.Delete(ctx, sessionID, userID); err != nil {
		return err
	}
	if err := s.Gateway.ExpireSession(ctx, sessionID); err != nil {
		applog.Error(nil, "checkout.session.expire", err, map[string]any{"session_id": sessionID})
	}
	return nil
}

func (s *CheckoutService) discardStale(ctx context.Context, userID string) {
	open, err := s.Pending.Open(ctx, userID)
	if err != nil {
		applog.Error(nil, "checkout.pending.list", err, map[string]any{"user_id": userID})
		return
	}
	for i := range open {
		if !s.expired(open[i]) {
			continue
		}
		p, err := s.Pending.Get(ctx, open[i].SessionID, userID)
		if err != nil {
			applog.Error(nil, "checkout.pending.get", err, map[string]any{"session_id": open[i].SessionID})
			continue
		}
		var fe *FulfillmentError
		if err := s.settleExpired(ctx, p); err != nil && !errors.Is(err, ErrCheckoutNotFound) && !errors.As(err, &fe) {
			applog.Error(nil, "checkout.pending.expire", err, map[string]any{"session_id": p.SessionID})
		}
	}
}

// settleExpired closes a pending checkout that outlived the TTL. The hosted session is asked
// first: a paid one is refunded, an unpaid one is expired and the row deleted. An error other
// than ErrCheckoutNotFound or *FulfillmentError leaves the row open for the next attempt.
func (s *CheckoutService) settleExpired(ctx context.Context, p *domain.PendingCheckout) error {
	fields := map[string]any{"session_id": p.SessionID, "user_id": p.UserID}

	sess, err := s.Gateway.RetrieveSession(ctx, p.SessionID)
	if err != nil && !errors.Is(err, payment.ErrSessionNotFound) {
		return err
	}
	if err == nil && sess.Paid {
		applog.Info(nil, "checkout.expired.paid", fields)
		return s.compensate(ctx, p, sess, ErrCheckoutExpired)
	}
	if err == nil {
		// a session that cannot be expired may have just been paid
		if xerr := s.Gateway.ExpireSession(ctx, p.SessionID); xerr != nil {
			applog.Error(nil, "checkout.session.expire", xerr, fields)
			return xerr
		}
	}
	if derr := s.Pending.Delete(ctx, p.SessionID, p.UserID); derr != nil {
		applog.Error(nil, "checkout.pending.delete", derr, fields)
		return derr
	}
	applog.Info(nil, "checkout.expired", fields)
	return ErrCheckoutNotFound
}

func (s *CheckoutService) expired(p domain.PendingCheckout) bool {
	if s.TTL <= 0 {
		return false
	}
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339Nano} {
		if t, err := time.ParseInLocation(layout, p.CreatedAt, time.UTC); err == nil {
			return s.now().After(t.Add(s.TTL))
		}
	}
	return false
}

// Unreconciled lists paid checkouts whose refund failed.
func (s *CheckoutService) Unreconciled(ctx context.Context) ([]domain.PendingCheckout, error) {
	return s.Pending.Unreconciled(ctx)
}
