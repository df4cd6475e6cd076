package repos

import (
	"context"
	"database/sql"
	"errors"

	"flowerstream/internal/domain"

	"github.com/jmoiron/sqlx"
)

type OrderRepo struct{ db sqlx.ExtContext }

func NewOrderRepo(db sqlx.ExtContext) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) WithTx(tx *sqlx.Tx) *OrderRepo { return &OrderRepo{db: tx} }

const orderCols = `id, user_id, total, status, recipient_name, delivery_address, phone,
	COALESCE(checkout_session_id,'') AS checkout_session_id, created_at`

// Create inserts the order header and its lines. A second order for the same checkout
// session is rejected by the unique index and reported as ErrDuplicate.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	if o.ID == "" {
		o.ID = newID()
	}
	if o.Status == "" {
		o.Status = domain.OrderStatusPending
	}
	var sessionID any
	if o.CheckoutSessionID != "" {
		sessionID = o.CheckoutSessionID
	}
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO orders
	    (id, user_id, total, status, recipient_name, delivery_address, phone, checkout_session_id, created_at)
	  VALUES
	    (?,  ?,       ?,     ?,      ?,              ?,                ?,     ?,                   CURRENT_TIMESTAMP)
	`, o.ID, o.UserID, o.Total, o.Status, o.RecipientName, o.DeliveryAddress, o.Phone, sessionID)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	for i := range o.Lines {
		o.Lines[i].OrderID = o.ID
		if err := r.InsertLine(ctx, o.Lines[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *OrderRepo) InsertLine(ctx context.Context, l domain.OrderLine) error {
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO order_items(order_id, product_id, name, quantity, price)
	  VALUES(?, ?, ?, ?, ?)
	`, l.OrderID, l.ProductID, l.Name, l.Qty, l.Price)
	return err
}

func (r *OrderRepo) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	var o domain.Order
	if err := sqlx.GetContext(ctx, r.db, &o, `SELECT `+orderCols+` FROM orders WHERE id = ?`, orderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	lines, err := r.Lines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

func (r *OrderRepo) Lines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	out := []domain.OrderLine{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT order_id, COALESCE(product_id,'') AS product_id, name, quantity, price
		FROM order_items
		WHERE order_id = ?
		ORDER BY rowid
	`, orderID)
	return out, err
}

func (r *OrderRepo) BySession(ctx context.Context, sessionID string) (*domain.Order, error) {
	var id string
	if err := sqlx.GetContext(ctx, r.db, &id, `SELECT id FROM orders WHERE checkout_session_id = ?`, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *OrderRepo) ListLatest(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []domain.Order{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+orderCols+`
		FROM orders
		ORDER BY datetime(created_at) DESC, rowid DESC
		LIMIT ?
	`, limit)
	return out, err
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	out := []domain.Order{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT `+orderCols+`
		FROM orders
		WHERE user_id = ?
		ORDER BY datetime(created_at) DESC, rowid DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	for i := range out {
		lines, err := r.Lines(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Lines = lines
	}
	return out, nil
}

// Transition moves an order from one status to another only if it is currently in from.
// It returns ErrNotFound when no row matched (missing order or wrong current status).
func (r *OrderRepo) Transition(ctx context.Context, id string, from, to domain.OrderStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	return affectedOne(res, err)
}
