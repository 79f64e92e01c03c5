package product

import (
	"context"

	"bakery-shop/internal/domain"
)

// Repository reads and writes the catalog: products and their priced
// variants. Lookups by id return domain.ErrNotFound for unknown or malformed
// ids.
type Repository interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	GetVariant(ctx context.Context, id string) (*domain.PricedVariant, error)
	ListActive(ctx context.Context) ([]domain.Product, error)
	ListFeatured(ctx context.Context, limit int) ([]domain.Product, error)
	ListTopViewed(ctx context.Context, limit int) ([]domain.Product, error)
	ListByCategory(ctx context.Context, categoryID string) ([]domain.Product, error)
	ListVariants(ctx context.Context, productID string) ([]domain.PricedVariant, error)
	IncrementViewCount(ctx context.Context, id string) error

	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
	UpsertVariant(ctx context.Context, v domain.PricedVariant) (*domain.PricedVariant, error)
}
