package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrForbidden           = errors.New("forbidden")
	ErrEmptyOrder          = errors.New("order has no items")
	ErrMenuItemUnavailable = errors.New("menu item unavailable")
	ErrOutOfStock          = errors.New("insufficient stock")
	ErrPromoInvalid        = errors.New("promo code not applicable")
	ErrInvalidAmount       = errors.New("invalid amount")
)

// ValidationError reports a request field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidTransitionError signals an order status change rejected by the
// lifecycle rules. Reason is safe to surface to the caller.
type InvalidTransitionError struct {
	From   string
	To     string
	Reason string
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s: %s", e.From, e.To, e.Reason)
}
