package category

import (
	"context"
	"errors"
	"testing"

	"bakery-shop/internal/domain"
)

type stubRepo struct {
	list []domain.Category
	byID map[string]*domain.Category
	err  error
}

func (s *stubRepo) ListActive(_ context.Context) ([]domain.Category, error) {
	return s.list, s.err
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (s *stubRepo) Upsert(_ context.Context, c domain.Category) (*domain.Category, error) {
	return &c, nil
}

func TestList_EmptyIsNonNil(t *testing.T) {
	svc := New(&stubRepo{})
	out, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", out)
	}
}

func TestList_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	svc := New(&stubRepo{err: boom})
	if _, err := svc.List(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestGet_InactiveIsNotFound(t *testing.T) {
	svc := New(&stubRepo{byID: map[string]*domain.Category{
		"breads":  {ID: "breads", IsActive: true},
		"retired": {ID: "retired", IsActive: false},
	}})

	c, err := svc.Get(context.Background(), "breads")
	if err != nil || c.ID != "breads" {
		t.Fatalf("expected breads, got %v %v", c, err)
	}
	if _, err := svc.Get(context.Background(), "retired"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for inactive category, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
