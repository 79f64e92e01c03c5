package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"bakery-shop/internal/domain"
	"bakery-shop/internal/testdb"
)

func TestPostgres_Lifecycle(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)
	repo := NewPostgres(pool, nil)

	var customerID string
	if err := pool.QueryRow(ctx, `
INSERT INTO customers (email, password_hash) VALUES ('tok@example.com', 'x')
RETURNING id::text`).Scan(&customerID); err != nil {
		t.Fatalf("insert customer: %v", err)
	}

	now := time.Now().UTC()
	live := Token{Hash: Digest("live"), CustomerID: customerID, Kind: KindAccess, ExpiresAt: now.Add(time.Hour)}
	stale := Token{Hash: Digest("stale"), CustomerID: customerID, Kind: KindRefresh, ExpiresAt: now.Add(-time.Hour)}
	for _, tok := range []Token{live, stale} {
		if err := repo.Create(ctx, tok); err != nil {
			t.Fatalf("create %s: %v", tok.Kind, err)
		}
	}
	if err := repo.Create(ctx, live); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists on duplicate digest, got %v", err)
	}
	orphan := Token{Hash: Digest("orphan"), CustomerID: "00000000-0000-0000-0000-000000000000", Kind: KindAccess, ExpiresAt: now.Add(time.Hour)}
	if err := repo.Create(ctx, orphan); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown customer, got %v", err)
	}

	got, err := repo.Get(ctx, Digest("live"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CustomerID != customerID || got.Kind != KindAccess || got.Expired(now) {
		t.Fatalf("unexpected token %+v", got)
	}

	n, err := repo.DeleteExpired(ctx, now)
	if err != nil || n != 1 {
		t.Fatalf("delete expired: n=%d err=%v", n, err)
	}
	if err := repo.Delete(ctx, Digest("live")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, Digest("live")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, Digest("live")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDigest(t *testing.T) {
	if Digest("a") == Digest("b") || len(Digest("a")) != 64 {
		t.Fatalf("unexpected digest %q", Digest("a"))
	}
}
