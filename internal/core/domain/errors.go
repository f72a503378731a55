package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidCartState   = errors.New("an item in the cart is no longer available")
	ErrValidation         = errors.New("validation failed")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("forbidden")
	ErrNotification       = errors.New("notification failed")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)
