package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrPaymentRequired   = errors.New("payment required")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrGatewayFailure    = errors.New("payment gateway failure")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrCurrencyMismatch  = errors.New("currency mismatch")
)
