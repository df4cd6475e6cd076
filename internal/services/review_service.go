package services

import (
	"context"
	"errors"

	"flowerstream/internal/domain"
	"flowerstream/internal/repos"
)

type ReviewService struct {
	Reviews  *repos.ReviewRepo
	Products *repos.ProductRepo
}

func NewReviewService(reviews *repos.ReviewRepo, products *repos.ProductRepo) *ReviewService {
	return &ReviewService{Reviews: reviews, Products: products}
}

// Add stores one review per user per product. The existence check only gives an early
// answer; the unique index decides under concurrent submits.
func (s *ReviewService) Add(ctx context.Context, userID, productID string, rating int, comment string) (domain.Review, error) {
	if rating < 1 || rating > 5 {
		return domain.Review{}, ErrInvalidRating
	}
	if _, err := s.Products.Get(ctx, productID); err != nil {
		return domain.Review{}, mapProductErr(err)
	}
	exists, err := s.Reviews.Exists(ctx, userID, productID)
	if err != nil {
		return domain.Review{}, err
	}
	if exists {
		return domain.Review{}, ErrAlreadyReviewed
	}

	rv := domain.Review{ProductID: productID, UserID: userID, Rating: rating, Comment: comment}
	if err := s.Reviews.Insert(ctx, &rv); err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			return domain.Review{}, ErrAlreadyReviewed
		}
		return domain.Review{}, err
	}
	return s.Reviews.Get(ctx, rv.ID)
}

// Delete lets the author remove their own review. Administrators are refused on this
// path even for their own reviews.
func (s *ReviewService) Delete(ctx context.Context, u *domain.User, reviewID string) (domain.Review, error) {
	if u.IsAdmin() {
		return domain.Review{}, ErrAdminReviewDelete
	}
	rv, err := s.Reviews.Get(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return rv, ErrReviewNotFound
		}
		return rv, err
	}
	// someone else's review is reported as missing
	if err := s.Reviews.DeleteByAuthor(ctx, reviewID, u.ID); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return rv, ErrReviewNotFound
		}
		return rv, err
	}
	return rv, nil
}
