package repos

import (
	"context"
	"database/sql"
	"errors"

	"flowerstream/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ReviewRepo struct{ db sqlx.ExtContext }

func NewReviewRepo(db sqlx.ExtContext) *ReviewRepo { return &ReviewRepo{db: db} }

func (r *ReviewRepo) Exists(ctx context.Context, userID, productID string) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM reviews WHERE user_id = ? AND product_id = ?`, userID, productID)
	return n > 0, err
}

// Insert relies on the (user_id, product_id) unique index; a concurrent duplicate returns ErrDuplicate.
func (r *ReviewRepo) Insert(ctx context.Context, rv *domain.Review) error {
	if rv.ID == "" {
		rv.ID = newID()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reviews(id, product_id, user_id, rating, comment, created_at)
		VALUES(?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, rv.ID, rv.ProductID, rv.UserID, rv.Rating, rv.Comment)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *ReviewRepo) Get(ctx context.Context, id string) (domain.Review, error) {
	var rv domain.Review
	err := sqlx.GetContext(ctx, r.db, &rv, `
		SELECT r.id, r.product_id, r.user_id, u.username, r.rating, r.comment, r.created_at
		FROM reviews r JOIN users u ON u.id = r.user_id
		WHERE r.id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return rv, ErrNotFound
	}
	return rv, err
}

// DeleteByAuthor removes the review only when userID wrote it.
func (r *ReviewRepo) DeleteByAuthor(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ? AND user_id = ?`, id, userID)
	return affectedOne(res, err)
}

// ForProduct returns reviews newest first.
func (r *ReviewRepo) ForProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	out := []domain.Review{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT r.id, r.product_id, r.user_id, u.username, r.rating, r.comment, r.created_at
		FROM reviews r JOIN users u ON u.id = r.user_id
		WHERE r.product_id = ?
		ORDER BY datetime(r.created_at) DESC, r.rowid DESC
	`, productID)
	return out, err
}

func (r *ReviewRepo) Summary(ctx context.Context, productID string) (domain.ReviewSummary, error) {
	var s domain.ReviewSummary
	err := sqlx.GetContext(ctx, r.db, &s, `
		SELECT COALESCE(AVG(rating), 0.0) AS average, COUNT(*) AS count
		FROM reviews WHERE product_id = ?
	`, productID)
	return s, err
}
