// internal/services/errors.go
package services

import "errors"

// Failure taxonomy surfaced to handlers. Services wrap these with
// fmt.Errorf("%w: ...") so callers can match with errors.Is while keeping
// the correctable detail in the message.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrStockExceeded     = errors.New("stock exceeded")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidAddress    = errors.New("invalid address")
	ErrInvalidItem       = errors.New("invalid item")
	ErrInvalidState      = errors.New("invalid order state")
	ErrConflict          = errors.New("conflict")
	ErrPaymentGateway    = errors.New("payment gateway error")
)
