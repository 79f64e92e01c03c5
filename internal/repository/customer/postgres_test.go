package customer

import (
	"context"
	"errors"
	"testing"

	"bakery-shop/internal/domain"
	"bakery-shop/internal/testdb"
	"github.com/brianvoe/gofakeit/v7"
)

func TestPostgres_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(testdb.Pool(t), nil)

	email := gofakeit.Email()
	created, err := repo.Create(ctx, domain.Customer{
		Email:        email,
		PasswordHash: "hash",
		FullName:     gofakeit.Name(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("unexpected customer %+v", created)
	}

	if _, err := repo.Create(ctx, domain.Customer{Email: email, PasswordHash: "other"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	byEmail, err := repo.GetByEmail(ctx, email)
	if err != nil || byEmail.ID != created.ID {
		t.Fatalf("get by email: %+v %v", byEmail, err)
	}
	byID, err := repo.GetByID(ctx, created.ID)
	if err != nil || byID.Email != created.Email {
		t.Fatalf("get by id: %+v %v", byID, err)
	}

	if _, err := repo.GetByID(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
