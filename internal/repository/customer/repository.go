package customer

import (
	"context"

	"bakery-shop/internal/domain"
)

// Repository persists and fetches customers. Emails are matched case
// insensitively and are unique.
type Repository interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
}
