package category

import (
	"context"

	"bakery-shop/internal/domain"
	categoryrepo "bakery-shop/internal/repository/category"
)

type Service struct {
	repo categoryrepo.Repository
}

func New(repo categoryrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	out, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Category{}
	}
	return out, nil
}

// Get returns an active category; inactive ones are reported as missing.
func (s *Service) Get(ctx context.Context, id string) (*domain.Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, domain.ErrNotFound
	}
	return c, nil
}
