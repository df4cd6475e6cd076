package services_test

import (
	"context"
	"errors"
	"testing"

	"flowerstream/internal/domain"
	"flowerstream/internal/services"

	"github.com/shopspring/decimal"
)

func ids(ps []domain.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestCatalogSearchIsCaseInsensitive(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	ps, err := e.catalog.List(ctx, "ROSE", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 1 || ps[0].ID != "rose-red" {
		t.Fatalf("want rose-red only, got %v", ids(ps))
	}

	// matches the description too
	ps, err = e.catalog.List(ctx, "spring", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 2 {
		t.Fatalf("want narcissus and crocus, got %v", ids(ps))
	}
}

func TestCatalogSearchTreatsWildcardsLiterally(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	ps, err := e.catalog.List(ctx, "_", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 0 {
		t.Fatalf("underscore must not match every flower, got %v", ids(ps))
	}

	p, err := e.catalog.Create(ctx, domain.Product{Name: "Sun_flower", Price: decimal.NewFromInt(95), Stock: 3})
	if err != nil {
		t.Fatal(err)
	}
	ps, err = e.catalog.List(ctx, "n_f", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 1 || ps[0].ID != p.ID {
		t.Fatalf("want the underscore product only, got %v", ids(ps))
	}
}

func TestCatalogSort(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cases := []struct {
		sort        string
		first, last string
	}{
		{"", "rose-red", "gerbera"},
		{"oldest", "rose-red", "gerbera"},
		{"newest", "gerbera", "rose-red"},
		{"price_asc", "aster", "orchid-purple"},
		{"price_desc", "orchid-purple", "aster"},
		{"name_asc", "aster", "tulip-yellow"},
		{"name_desc", "tulip-yellow", "aster"},
		{"bogus", "rose-red", "gerbera"},
	}
	for _, tc := range cases {
		ps, err := e.catalog.List(ctx, "", tc.sort)
		if err != nil {
			t.Fatal(err)
		}
		if len(ps) != 11 {
			t.Fatalf("%s: want 11 products, got %d", tc.sort, len(ps))
		}
		if ps[0].ID != tc.first || ps[len(ps)-1].ID != tc.last {
			t.Fatalf("%s: got %v", tc.sort, ids(ps))
		}
	}
}

func TestCatalogAdminCRUD(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.catalog.Create(ctx, domain.Product{Name: "Sunflower", Description: "Big and yellow", Price: decimal.RequireFromString("110.50"), Stock: 9})
	if err != nil {
		t.Fatal(err)
	}
	if p.ID == "" || p.Stock != 9 || !p.Price.Equal(decimal.RequireFromString("110.5")) {
		t.Fatalf("unexpected product %+v", p)
	}

	if _, err := e.catalog.Create(ctx, domain.Product{Name: "  ", Price: decimal.NewFromInt(1)}); !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("blank name: want ErrInvalidInput, got %v", err)
	}
	if _, err := e.catalog.Create(ctx, domain.Product{Name: "X", Price: decimal.NewFromInt(-1)}); !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("negative price: want ErrInvalidInput, got %v", err)
	}

	p.Stock = 4
	p.Price = decimal.NewFromInt(95)
	p, err = e.catalog.Update(ctx, p)
	if err != nil {
		t.Fatal(err)
	}
	if p.Stock != 4 || p.Price.String() != "95" {
		t.Fatalf("update not applied: %+v", p)
	}

	if _, err := e.catalog.Update(ctx, domain.Product{ID: "missing", Name: "Ghost"}); !errors.Is(err, services.ErrProductNotFound) {
		t.Fatalf("want ErrProductNotFound, got %v", err)
	}

	if err := e.catalog.Delete(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if err := e.catalog.Delete(ctx, p.ID); !errors.Is(err, services.ErrProductNotFound) {
		t.Fatalf("second delete: want ErrProductNotFound, got %v", err)
	}
}

func TestDeleteProductCascadesCartButKeepsOrderHistory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.cart.Add(ctx, olena, "carnation", 2); err != nil {
		t.Fatal(err)
	}
	o := placeOrder(t, e, olena)
	if _, err := e.cart.Add(ctx, olena, "carnation", 1); err != nil {
		t.Fatal(err)
	}

	if err := e.catalog.Delete(ctx, "carnation"); err != nil {
		t.Fatal(err)
	}
	v, err := e.cart.View(ctx, olena)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Lines) != 0 {
		t.Fatalf("cart line should cascade, got %+v", v.Lines)
	}

	got, err := e.orders.Get(ctx, o.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Lines) != 1 || got.Lines[0].Name != "Carnation" || got.Lines[0].ProductID != "" {
		t.Fatalf("order line should keep its snapshot: %+v", got.Lines)
	}
}
