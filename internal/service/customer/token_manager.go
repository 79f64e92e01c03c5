package customer

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"bakery-shop/internal/domain"
	tokenrepo "bakery-shop/internal/repository/token"
)

const issueAttempts = 5

// tokenManager hands out opaque bearer tokens and resolves them back to
// customers. Only digests reach the repository.
type tokenManager struct {
	repo tokenrepo.Repository
	now  func() time.Time
}

func newTokenManager(repo tokenrepo.Repository) *tokenManager {
	return &tokenManager{repo: repo, now: time.Now}
}

func (m *tokenManager) Issue(ctx context.Context, customerID string, kind tokenrepo.Kind, ttl time.Duration) (string, error) {
	expiresAt := m.now().Add(ttl)
	for i := 0; i < issueAttempts; i++ {
		raw, err := randomToken()
		if err != nil {
			return "", err
		}
		err = m.repo.Create(ctx, tokenrepo.Token{
			Hash:       tokenrepo.Digest(raw),
			CustomerID: customerID,
			Kind:       kind,
			ExpiresAt:  expiresAt,
		})
		switch {
		case err == nil:
			return raw, nil
		case errors.Is(err, domain.ErrAlreadyExists):
			continue
		default:
			return "", err
		}
	}
	return "", errors.New("token collision")
}

// Lookup returns the stored token for raw when it is of the given kind.
// Unknown, expired and other-kind tokens all report false; expired ones are
// dropped on sight.
func (m *tokenManager) Lookup(ctx context.Context, raw string, kind tokenrepo.Kind) (*tokenrepo.Token, bool) {
	if raw == "" {
		return nil, false
	}
	hash := tokenrepo.Digest(raw)
	t, err := m.repo.Get(ctx, hash)
	if err != nil || t.Kind != kind || t.CustomerID == "" {
		return nil, false
	}
	if t.Expired(m.now()) {
		_ = m.repo.Delete(ctx, hash)
		return nil, false
	}
	return t, true
}

// Redeem looks up a refresh token and deletes it. Only one of several
// concurrent redeems of the same token succeeds.
func (m *tokenManager) Redeem(ctx context.Context, raw string) (*tokenrepo.Token, bool) {
	t, ok := m.Lookup(ctx, raw, tokenrepo.KindRefresh)
	if !ok {
		return nil, false
	}
	if err := m.repo.Delete(ctx, t.Hash); err != nil {
		return nil, false
	}
	return t, true
}

func (m *tokenManager) Revoke(ctx context.Context, raw string) error {
	if err := m.repo.Delete(ctx, tokenrepo.Digest(raw)); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (m *tokenManager) Purge(ctx context.Context) (int64, error) {
	return m.repo.DeleteExpired(ctx, m.now())
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
