package repos

import "errors"

// Sentinels for the not-found family. Handlers map all of them to a 404
// surface; an order owned by another user reads as ErrOrderNotFound, never
// as a forbidden.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
	ErrCartNotFound    = errors.New("cart not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrEmailTaken      = errors.New("email already in use")
	ErrProductInUse    = errors.New("product referenced by existing orders")
)
