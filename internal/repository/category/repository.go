package category

import (
	"context"

	"bakery-shop/internal/domain"
)

type Repository interface {
	ListActive(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}
