package repos

import (
	"context"

	"flowerstream/internal/domain"

	"github.com/jmoiron/sqlx"
)

type FavoriteRepo struct{ db sqlx.ExtContext }

func NewFavoriteRepo(db sqlx.ExtContext) *FavoriteRepo { return &FavoriteRepo{db: db} }

// Add inserts the pair; an existing pair surfaces as ErrDuplicate from the primary key.
func (r *FavoriteRepo) Add(ctx context.Context, userID, productID string) error {
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO favorite_items(user_id, product_id, created_at)
	  VALUES(?, ?, CURRENT_TIMESTAMP)
	`, userID, productID)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *FavoriteRepo) Remove(ctx context.Context, userID, productID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM favorite_items WHERE user_id=? AND product_id=?`, userID, productID)
	return err
}

func (r *FavoriteRepo) List(ctx context.Context, userID string) ([]domain.Favorite, error) {
	out := []domain.Favorite{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
	  SELECT p.id AS product_id, p.name, p.image_url, p.price, p.stock, fi.created_at
	  FROM favorite_items fi
	  JOIN products p ON p.id = fi.product_id
	  WHERE fi.user_id = ?
	  ORDER BY fi.created_at, fi.rowid
	`, userID)
	return out, err
}
