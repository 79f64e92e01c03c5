package cart

import (
	"context"

	"bakery-shop/internal/domain"
)

// Store persists carts and their lines keyed by owner identity.
//
// FindOrCreate and UpsertLine are atomic on their own. Multi-step changes go
// through WithinTx so they commit together or not at all.
type Store interface {
	FindOrCreate(ctx context.Context, owner domain.Owner) (*domain.Cart, error)
	FindByOwner(ctx context.Context, owner domain.Owner) (*domain.Cart, error)
	FindByID(ctx context.Context, cartID string) (*domain.Cart, error)
	GetLine(ctx context.Context, lineID string) (*domain.CartLine, error)

	// UpsertLine inserts line into the cart or, when a line with the same
	// consolidation key exists, adds line.Quantity to it and keeps its price.
	UpsertLine(ctx context.Context, cartID string, line domain.CartLine) (*domain.CartLine, error)
	SetLineQuantity(ctx context.Context, lineID string, quantity int) error
	DeleteLine(ctx context.Context, lineID string) error
	DeleteAllLines(ctx context.Context, cartID string) error
	DeleteCart(ctx context.Context, cartID string) error
	ReassignLine(ctx context.Context, lineID, newCartID string) error

	// LockOwner serialises the rest of the current transaction against other
	// transactions locking the same owner. Outside a transaction it is a no-op.
	LockOwner(ctx context.Context, owner domain.Owner) error
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
