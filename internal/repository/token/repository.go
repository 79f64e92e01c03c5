package token

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Token is the stored form of a bearer token. Only the digest of the raw
// value is kept.
type Token struct {
	Hash       string
	CustomerID string
	Kind       Kind
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// Expired reports whether the token is past its expiry at now.
func (t Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Repository stores tokens by digest. Get and Delete return
// domain.ErrNotFound for unknown digests.
type Repository interface {
	Create(ctx context.Context, token Token) error
	Get(ctx context.Context, hash string) (*Token, error)
	Delete(ctx context.Context, hash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Digest is the lookup key for a raw bearer token.
func Digest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
