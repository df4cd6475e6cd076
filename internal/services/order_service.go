package services

import (
	"context"
	"errors"

	"flowerstream/internal/domain"
	"flowerstream/internal/repos"
)

type OrderService struct {
	Orders *repos.OrderRepo
}

func NewOrderService(orders *repos.OrderRepo) *OrderService {
	return &OrderService{Orders: orders}
}

func (s *OrderService) History(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.Orders.ListByUser(ctx, userID)
}

// Detail returns the order to its owner or to an administrator. Anyone else gets
// ErrOrderNotFound so order ids cannot be probed.
func (s *OrderService) Detail(ctx context.Context, u *domain.User, orderID string) (*domain.Order, error) {
	o, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if o.UserID != u.ID && !u.IsAdmin() {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *OrderService) AdminList(ctx context.Context, limit int) ([]domain.Order, error) {
	return s.Orders.ListLatest(ctx, limit)
}

// SetStatus applies an administrator status change. The only transition is
// pending -> confirmed; anything else is ErrInvalidTransition.
func (s *OrderService) SetStatus(ctx context.Context, orderID string, to domain.OrderStatus) (*domain.Order, error) {
	if to != domain.OrderStatusConfirmed {
		return nil, ErrInvalidTransition
	}
	err := s.Orders.Transition(ctx, orderID, domain.OrderStatusPending, to)
	if errors.Is(err, repos.ErrNotFound) {
		if _, gerr := s.Orders.Get(ctx, orderID); errors.Is(gerr, repos.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}
	return s.Orders.Get(ctx, orderID)
}
