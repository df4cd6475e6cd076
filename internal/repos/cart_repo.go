package repos

import (
	"context"

	"flowerstream/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CartRepo struct{ db sqlx.ExtContext }

func NewCartRepo(db sqlx.ExtContext) *CartRepo { return &CartRepo{db: db} }

func (r *CartRepo) WithTx(tx *sqlx.Tx) *CartRepo { return &CartRepo{db: tx} }

// AddItem creates the (user, product) line or increments its quantity. The primary key
// guarantees a single line per product.
func (r *CartRepo) AddItem(ctx context.Context, userID, productID string, qty int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items(user_id,product_id,quantity,created_at)
		VALUES(?,?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(user_id,product_id) DO UPDATE
		SET quantity = cart_items.quantity + excluded.quantity, updated_at = CURRENT_TIMESTAMP
	`, userID, productID, qty)
	return err
}

// SetItem stores an absolute quantity for the line, creating it when absent.
func (r *CartRepo) SetItem(ctx context.Context, userID, productID string, qty int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items(user_id,product_id,quantity,created_at)
		VALUES(?,?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(user_id,product_id) DO UPDATE
		SET quantity = excluded.quantity, updated_at = CURRENT_TIMESTAMP
	`, userID, productID, qty)
	return err
}

func (r *CartRepo) RemoveItem(ctx context.Context, userID, productID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ? AND product_id = ?`, userID, productID)
	return err
}

func (r *CartRepo) Quantity(ctx context.Context, userID, productID string) (int, error) {
	var qty int
	err := sqlx.GetContext(ctx, r.db, &qty, `
		SELECT COALESCE(SUM(quantity),0) FROM cart_items WHERE user_id = ? AND product_id = ?
	`, userID, productID)
	return qty, err
}

// Lines loads the user's cart joined with current product name, price and stock.
func (r *CartRepo) Lines(ctx context.Context, userID string) ([]domain.CartLine, error) {
	out := []domain.CartLine{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
	  SELECT ci.product_id, p.name, p.image_url, p.price, p.stock, ci.quantity
	  FROM cart_items ci JOIN products p ON p.id = ci.product_id
	  WHERE ci.user_id = ?
	  ORDER BY ci.created_at, ci.rowid
	`, userID)
	return out, err
}

func (r *CartRepo) Clear(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID)
	return err
}
