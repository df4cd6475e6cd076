package services

import (
	"errors"
	"fmt"
)

var (
	ErrBadCreds        = errors.New("invalid username or password")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrInvalidInput    = errors.New("invalid input")
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	ErrAlreadyFavorite = errors.New("product is already a favorite")

	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrAlreadyReviewed   = errors.New("you have already reviewed this product")
	ErrReviewNotFound    = errors.New("review not found")
	ErrAdminReviewDelete = errors.New("administrators cannot delete reviews")

	ErrEmptyCart           = errors.New("cart is empty")
	ErrCheckoutNotFound    = errors.New("checkout not found or expired, please return to the cart")
	ErrCheckoutExpired     = errors.New("checkout expired before it was confirmed")
	ErrPaymentNotCompleted = errors.New("payment has not been completed")

	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// StockError names the product whose requested quantity exceeds what is available.
type StockError struct {
	ProductID string
	Name      string
	Available int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("not enough %s in stock: %d available", e.Name, e.Available)
}

// DeliveryError reports the first invalid delivery field.
type DeliveryError struct {
	Field string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("invalid delivery %s", e.Field)
}

// FulfillmentError is returned when a paid checkout could not be turned into an order.
// Refunded tells whether the charge was returned to the customer.
type FulfillmentError struct {
	Refunded bool
	Err      error
}

func (e *FulfillmentError) Error() string {
	if e.Refunded {
		return "order could not be completed, your payment has been refunded"
	}
	return "order could not be completed, support will contact you about your payment"
}

func (e *FulfillmentError) Unwrap() error { return e.Err }
