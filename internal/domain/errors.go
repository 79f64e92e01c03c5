package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict on create.
	ErrAlreadyExists = errors.New("already exists")

	ErrInvalidIdentity  = errors.New("exactly one of user id or session token is required")
	ErrInvalidQuantity  = errors.New("quantity must be between 1 and 999")
	ErrProductNotFound  = errors.New("product not found")
	ErrVariantNotFound  = errors.New("product variant not found")
	ErrPriceUnavailable = errors.New("price information not provided")
	ErrLineNotFound     = errors.New("cart item not found")
	ErrUnauthorized     = errors.New("unauthorized access to cart")
	// ErrStaleWrite reports a concurrent write conflict; retry the whole operation.
	ErrStaleWrite = errors.New("stale write")
)
