package repos

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// AdminPassword is used when the administrator account is seeded on first start.
var AdminPassword = "Admin123!"

var ErrNotFound = errors.New("not found")

// Open connects to the sqlite database without touching the schema.
// A single connection is kept so ":memory:" databases behave like files and writes serialize.
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenDB opens the database, applies pending migrations and seeds demo data.
func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}

	m, err := NewMigrator(db)
	if err != nil {
		return nil, err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return nil, fmt.Errorf("migrate up: %w", err)
	}

	if err := seedProducts(db); err != nil {
		return nil, err
	}
	if err := seedUsers(db); err != nil {
		return nil, err
	}
	return db, nil
}

// NewMigrator wires golang-migrate to the embedded migrations and the open handle.
// Closing the returned Migrate also closes db.
func NewMigrator(db *sqlx.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}
	drv, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return nil, err
	}
	return migrate.NewWithInstance("iofs", src, "sqlite", drv)
}

// InTx runs fn inside a transaction, rolling back on any error.
func InTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var se *msqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func seedProducts(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting initial flowers")

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()
	tx.MustExec(`INSERT INTO products(id,name,description,price,image_url,stock) VALUES
	  ('rose-red','Red Rose','Classic red rose, the symbol of love.',150,'products/flower1.jpg',25),
	  ('tulip-yellow','Yellow Tulip','Bright tulip for a good mood.',90,'products/flower2.jpg',30),
	  ('lily-white','White Lily','Delicate white lily, an elegant gift.',120,'products/flower3.jpg',15),
	  ('orchid-purple','Purple Orchid','Exotic purple orchid for connoisseurs.',200,'products/flower4.jpg',8),
	  ('peony-pink','Pink Peony','Lush pink peony, tenderness and beauty.',180,'products/flower5.jpg',12),
	  ('carnation','Carnation','Fragrant carnation, a great addition to a bouquet.',80,'products/flower6.jpg',40),
	  ('aster','Aster','Colourful aster, a bright accent for your home.',60,'products/flower7.jpg',35),
	  ('narcissus','Narcissus','Spring narcissus, the symbol of renewal.',70,'products/flower8.jpg',20),
	  ('iris','Iris','Elegant irises, refinement and style.',90,'products/flower9.jpg',18),
	  ('crocus','Crocus','The first spring crocus, hope and joy.',75,'products/flower10.jpg',22),
	  ('gerbera','Gerbera','Bright gerbera, a smile every day.',100,'products/flower11.jpg',28)`)
	return tx.Commit()
}

// seedUsers ensures the administrator and two demo customers exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Username, Role, Raw string
	}
	users := []u{
		{"u-admin", "admin", "admin", AdminPassword},
		{"u-olena", "olena", "user", "Passw0rd!"},
		{"u-taras", "taras", "user", "Passw0rd!"},
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		var exists int
		if err := tx.Get(&exists, `SELECT COUNT(*) FROM users WHERE LOWER(username)=LOWER(?)`, x.Username); err != nil {
			return err
		}
		if exists > 0 {
			continue
		}
		h, err := bcrypt.GenerateFromPassword([]byte(x.Raw), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO users(id,username,password_hash,role) VALUES(?,?,?,?)`,
			x.ID, x.Username, string(h), x.Role); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func newID() string { return uuid.NewString() }
