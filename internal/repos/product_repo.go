package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"flowerstream/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ProductRepo struct{ db sqlx.ExtContext }

func NewProductRepo(db sqlx.ExtContext) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) WithTx(tx *sqlx.Tx) *ProductRepo { return &ProductRepo{db: tx} }

const productCols = `id, name, description, price, image_url, stock,
    created_at, COALESCE(updated_at,'') AS updated_at`

// sortClauses maps the public sort keys to ORDER BY clauses; rowid breaks
// same-second created_at ties in insertion order.
var sortClauses = map[string]string{
	"newest":     "datetime(created_at) DESC, rowid DESC",
	"oldest":     "datetime(created_at) ASC, rowid ASC",
	"price_asc":  "price ASC, rowid ASC",
	"price_desc": "price DESC, rowid ASC",
	"name_asc":   "name COLLATE NOCASE ASC, rowid ASC",
	"name_desc":  "name COLLATE NOCASE DESC, rowid ASC",
}

// DefaultSort is the catalog order when no sort key is given.
const DefaultSort = "oldest"

func ValidSort(s string) bool {
	_, ok := sortClauses[s]
	return ok
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *ProductRepo) List(ctx context.Context, q, sort string) ([]domain.Product, error) {
	order, ok := sortClauses[sort]
	if !ok {
		order = sortClauses[DefaultSort]
	}
	where := `1 = 1`
	args := []any{}
	if q != "" {
		where += ` AND (LOWER(name) LIKE LOWER(?) ESCAPE '\' OR LOWER(description) LIKE LOWER(?) ESCAPE '\')`
		pat := "%" + likeEscaper.Replace(q) + "%"
		args = append(args, pat, pat)
	}

	query := `SELECT ` + productCols + ` FROM products WHERE ` + where + ` ORDER BY ` + order
	out := []domain.Product{}
	err := sqlx.SelectContext(ctx, r.db, &out, query, args...)
	return out, err
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, r.db, &p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		p.ID = newID()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products(id, name, description, price, image_url, stock, created_at)
		VALUES(?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, p.ID, p.Name, p.Description, p.Price, p.ImageURL, p.Stock)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *ProductRepo) Update(ctx context.Context, p domain.Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = ?, description = ?, price = ?, image_url = ?, stock = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, p.Name, p.Description, p.Price, p.ImageURL, p.Stock, p.ID)
	return affectedOne(res, err)
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	return affectedOne(res, err)
}

// InsufficientStockError reports a conditional decrement that matched no row.
type InsufficientStockError struct {
	ProductID string
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (requested %d)", e.ProductID, e.Requested)
}

// DecrementStock subtracts by units only when enough stock exists, so stock can never go negative.
func (r *ProductRepo) DecrementStock(ctx context.Context, productID string, by int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock >= ?
	`, by, productID, by)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &InsufficientStockError{ProductID: productID, Requested: by}
	}
	return nil
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
