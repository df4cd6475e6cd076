package services

import (
	"context"
	"errors"
	"time"

	"flowerstream/internal/domain"
	"flowerstream/internal/repos"
	"flowerstream/internal/validate"
)

type CatalogService struct {
	Products *repos.ProductRepo
	Reviews  *repos.ReviewRepo
	Loc      *time.Location // review timestamps are rendered here
}

func NewCatalogService(products *repos.ProductRepo, reviews *repos.ReviewRepo, loc *time.Location) *CatalogService {
	if loc == nil {
		loc = time.UTC
	}
	return &CatalogService{Products: products, Reviews: reviews, Loc: loc}
}

// List returns products matching q (name or description, case-insensitive) in the given
// order. Unknown sort keys fall back to the default.
func (s *CatalogService) List(ctx context.Context, q, sort string) ([]domain.Product, error) {
	if !repos.ValidSort(sort) {
		sort = repos.DefaultSort
	}
	return s.Products.List(ctx, q, sort)
}

func (s *CatalogService) Get(ctx context.Context, id string) (domain.Product, error) {
	p, err := s.Products.Get(ctx, id)
	if errors.Is(err, repos.ErrNotFound) {
		return p, ErrProductNotFound
	}
	return p, err
}

type ProductDetail struct {
	Product domain.Product `json:"product"`
	domain.ReviewSummary
	Reviews []domain.Review `json:"reviews"`
}

func (s *CatalogService) Detail(ctx context.Context, id string) (ProductDetail, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return ProductDetail{}, err
	}
	reviews, err := s.Reviews.ForProduct(ctx, id)
	if err != nil {
		return ProductDetail{}, err
	}
	sum, err := s.Reviews.Summary(ctx, id)
	if err != nil {
		return ProductDetail{}, err
	}
	for i := range reviews {
		reviews[i].CreatedAt = s.localTime(reviews[i].CreatedAt)
	}
	return ProductDetail{Product: p, ReviewSummary: sum, Reviews: reviews}, nil
}

// localTime converts a sqlite CURRENT_TIMESTAMP (UTC) into the display zone.
func (s *CatalogService) localTime(ts string) string {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339Nano} {
		if t, err := time.ParseInLocation(layout, ts, time.UTC); err == nil {
			return t.In(s.Loc).Format("2006-01-02 15:04")
		}
	}
	return ts
}

func validProduct(p domain.Product) error {
	if _, ok := validate.Text(p.Name, 120); !ok {
		return ErrInvalidInput
	}
	if len([]rune(p.Description)) > 2000 || p.Price.IsNegative() || p.Stock < 0 {
		return ErrInvalidInput
	}
	return nil
}

func (s *CatalogService) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	if err := validProduct(p); err != nil {
		return p, err
	}
	if err := s.Products.Create(ctx, &p); err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			return p, ErrInvalidInput
		}
		return p, err
	}
	return s.Products.Get(ctx, p.ID)
}

func (s *CatalogService) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	if err := validProduct(p); err != nil {
		return p, err
	}
	if err := s.Products.Update(ctx, p); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return p, ErrProductNotFound
		}
		return p, err
	}
	return s.Products.Get(ctx, p.ID)
}

// Delete removes the product; cart lines, favorites and reviews cascade, order lines keep
// their name and price with the product reference cleared.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	err := s.Products.Delete(ctx, id)
	if errors.Is(err, repos.ErrNotFound) {
		return ErrProductNotFound
	}
	return err
}
