package services

import (
	"context"
	"errors"

	"flowerstream/internal/domain"
	"flowerstream/internal/repos"
)

type FavoriteService struct {
	Favorites *repos.FavoriteRepo
	Products  *repos.ProductRepo
}

func NewFavoriteService(favs *repos.FavoriteRepo, products *repos.ProductRepo) *FavoriteService {
	return &FavoriteService{Favorites: favs, Products: products}
}

func (s *FavoriteService) List(ctx context.Context, userID string) ([]domain.Favorite, error) {
	return s.Favorites.List(ctx, userID)
}

// Add does not pre-check; the (user, product) key reports duplicates.
func (s *FavoriteService) Add(ctx context.Context, userID, productID string) ([]domain.Favorite, error) {
	if _, err := s.Products.Get(ctx, productID); err != nil {
		return nil, mapProductErr(err)
	}
	if err := s.Favorites.Add(ctx, userID, productID); err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			return nil, ErrAlreadyFavorite
		}
		return nil, err
	}
	return s.List(ctx, userID)
}

// Remove succeeds whether or not the product was a favorite.
func (s *FavoriteService) Remove(ctx context.Context, userID, productID string) ([]domain.Favorite, error) {
	if err := s.Favorites.Remove(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.List(ctx, userID)
}
