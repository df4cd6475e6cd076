package repos

import (
	"context"
	"database/sql"
	"errors"

	"flowerstream/internal/domain"

	"github.com/jmoiron/sqlx"
)

// PendingRepo stores delivery details and the line snapshot of checkouts awaiting payment.
type PendingRepo struct{ db sqlx.ExtContext }

func NewPendingRepo(db sqlx.ExtContext) *PendingRepo { return &PendingRepo{db: db} }

func (r *PendingRepo) WithTx(tx *sqlx.Tx) *PendingRepo { return &PendingRepo{db: tx} }

func (r *PendingRepo) Save(ctx context.Context, p domain.PendingCheckout) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pending_checkouts(session_id, user_id, recipient_name, delivery_address, phone, status, created_at)
		VALUES(?, ?, ?, ?, ?, 'open', CURRENT_TIMESTAMP)
	`, p.SessionID, p.UserID, p.Name, p.Address, p.Phone)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	for _, l := range p.Lines {
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO pending_checkout_items(session_id, product_id, name, quantity, price)
			VALUES(?, ?, ?, ?, ?)
		`, p.SessionID, l.ProductID, l.Name, l.Qty, l.Price); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the pending checkout for the session owned by userID.
func (r *PendingRepo) Get(ctx context.Context, sessionID, userID string) (*domain.PendingCheckout, error) {
	var p domain.PendingCheckout
	err := sqlx.GetContext(ctx, r.db, &p, `
		SELECT session_id, user_id, recipient_name, delivery_address, phone, status, created_at
		FROM pending_checkouts
		WHERE session_id = ? AND user_id = ?
	`, sessionID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := sqlx.SelectContext(ctx, r.db, &p.Lines, `
		SELECT session_id, product_id, name, quantity, price
		FROM pending_checkout_items
		WHERE session_id = ?
		ORDER BY rowid
	`, sessionID); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PendingRepo) SetStatus(ctx context.Context, sessionID, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE pending_checkouts SET status = ? WHERE session_id = ?`, status, sessionID)
	return affectedOne(res, err)
}

// Delete removes an open checkout and is idempotent. Refunded and refund_failed rows are
// kept for reconciliation. Line rows go with the header via ON DELETE CASCADE.
func (r *PendingRepo) Delete(ctx context.Context, sessionID, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM pending_checkouts WHERE session_id = ? AND user_id = ? AND status = 'open'
	`, sessionID, userID)
	return err
}

// Open lists the headers of the user's checkouts still awaiting payment, oldest first.
func (r *PendingRepo) Open(ctx context.Context, userID string) ([]domain.PendingCheckout, error) {
	out := []domain.PendingCheckout{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT session_id, user_id, recipient_name, delivery_address, phone, status, created_at
		FROM pending_checkouts
		WHERE user_id = ? AND status = 'open'
		ORDER BY datetime(created_at), rowid
	`, userID)
	return out, err
}

// Unreconciled lists checkouts that were charged, not fulfilled and not refunded.
func (r *PendingRepo) Unreconciled(ctx context.Context) ([]domain.PendingCheckout, error) {
	out := []domain.PendingCheckout{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT session_id, user_id, recipient_name, delivery_address, phone, status, created_at
		FROM pending_checkouts
		WHERE status = 'refund_failed'
		ORDER BY datetime(created_at), rowid
	`)
	return out, err
}
