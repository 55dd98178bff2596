package services

import (
	"storefront/internal/checkout"

	"github.com/go-faster/errors"
)

var (
	// ErrEmptyCart is returned when paying for a session without cart lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrPageOutOfRange is returned for page numbers whose offset does not fit.
	ErrPageOutOfRange = errors.New("page out of range")
)

// PaymentRejectedError carries the field errors of a refused card payment.
type PaymentRejectedError struct {
	Errors checkout.ValidationErrors
}

func (e *PaymentRejectedError) Error() string {
	return "payment rejected: card details are invalid"
}
