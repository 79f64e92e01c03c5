package category

import (
	"context"
	"testing"

	"bakery-shop/internal/domain"
	"bakery-shop/internal/testdb"
)

func TestPostgres_UpsertAndList(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)

	repo := NewPostgres(pool)
	cat, err := repo.Upsert(ctx, domain.Category{
		Key:      "breads",
		Name:     "Breads",
		Slug:     "breads",
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if cat.ID == "" || cat.Key != "breads" {
		t.Fatalf("unexpected category %+v", cat)
	}
	if _, err := repo.Upsert(ctx, domain.Category{Key: "seasonal", Name: "Seasonal"}); err != nil {
		t.Fatalf("upsert inactive: %v", err)
	}

	list, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "breads" {
		t.Fatalf("unexpected list %+v", list)
	}

	got, err := repo.GetByID(ctx, cat.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Breads" {
		t.Fatalf("unexpected category %+v", got)
	}
	if _, err := repo.GetByID(ctx, "nope"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgres_UpsertUpdatesExisting(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)

	repo := NewPostgres(pool)
	first, err := repo.Upsert(ctx, domain.Category{Key: "cakes", Name: "Cakes", Slug: "cakes", Description: "Layered", IsActive: true})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	second, err := repo.Upsert(ctx, domain.Category{Key: "cakes", Name: "Celebration Cakes", IsActive: true})
	if err != nil {
		t.Fatalf("upsert update: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same ID after update")
	}
	if second.Name != "Celebration Cakes" || second.Slug != "cakes" || second.Description != "Layered" {
		t.Fatalf("expected updated name with kept slug and description, got %+v", second)
	}
}
