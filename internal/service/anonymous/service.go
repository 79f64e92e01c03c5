// Package anonymous issues and tracks the session tokens that key guest
// carts.
package anonymous

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// MaxSessions caps how many tokens one process tracks. Past it, unknown
// tokens are no longer adopted and callers get a fresh session instead.
const MaxSessions = 100_000

var ErrInvalidToken = errors.New("invalid session token")

type Service struct {
	sessions *tokenManager
	ttl      time.Duration
}

// New returns a Service whose sessions expire after ttl without use.
func New(ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Service{
		sessions: newTokenManager(time.Now, ttl, MaxSessions),
		ttl:      ttl,
	}
}

// Issue starts a new anonymous session.
func (s *Service) Issue() string {
	token := uuid.NewString()
	s.sessions.Touch(token)
	return token
}

// Resume validates a token presented by a client and extends its lifetime.
// Well-formed tokens this process has not seen, e.g. after a restart, are
// adopted while there is room. Expired, malformed or unadoptable tokens fail
// with ErrInvalidToken.
func (s *Service) Resume(token string) (string, error) {
	parsed, err := uuid.Parse(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	token = parsed.String()
	if !s.sessions.Resume(token) {
		return "", ErrInvalidToken
	}
	return token, nil
}

// End forgets a session, typically after its cart was merged at login.
func (s *Service) End(token string) {
	s.sessions.Forget(token)
}

func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Sweep drops sessions that expired more than one ttl ago.
func (s *Service) Sweep() int {
	return s.sessions.Sweep()
}

// SweepEvery calls Sweep on each tick until ctx is done.
func (s *Service) SweepEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
