package storefront

import "errors"

var (
	ErrClosed      = errors.New("storefront: closed")
	ErrValidation  = errors.New("storefront: invalid input")
	ErrMaxStock    = errors.New("storefront: maximum stock reached")
	ErrNotInCart   = errors.New("storefront: item is not in the cart")
	ErrUnknownItem = errors.New("storefront: unknown item")
	ErrCancelled   = errors.New("storefront: cancelled")
)
