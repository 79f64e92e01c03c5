package anonymous

import (
	"sync"
	"time"
)

// inlineSweepEvery bounds how often a full map is swept on the request path.
const inlineSweepEvery = time.Minute

// tokenManager tracks session expiries. An expired token stays behind as a
// tombstone for one more ttl so it cannot be adopted again, then Sweep drops
// it.
type tokenManager struct {
	mu        sync.Mutex
	now       func() time.Time
	ttl       time.Duration
	limit     int
	tokens    map[string]time.Time
	lastSweep time.Time
}

func newTokenManager(now func() time.Time, ttl time.Duration, limit int) *tokenManager {
	return &tokenManager{
		now:    now,
		ttl:    ttl,
		limit:  limit,
		tokens: make(map[string]time.Time),
	}
}

// Touch records a freshly issued token as used now. When the map is full the
// token goes untracked and is adopted by a later Resume.
func (m *tokenManager) Touch(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.full(now) {
		return
	}
	m.tokens[token] = now.Add(m.ttl)
}

// Resume extends a live token. An unknown token is adopted only while fewer
// than limit tokens are tracked. Tombstoned tokens are refused.
func (m *tokenManager) Resume(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	expiresAt, known := m.tokens[token]
	switch {
	case known && now.After(expiresAt):
		return false
	case !known && m.full(now):
		return false
	}
	m.tokens[token] = now.Add(m.ttl)
	return true
}

// full reports whether no new token fits, sweeping first when the last sweep
// is old enough.
func (m *tokenManager) full(now time.Time) bool {
	if len(m.tokens) < m.limit {
		return false
	}
	if now.Sub(m.lastSweep) >= inlineSweepEvery {
		m.sweep(now)
	}
	return len(m.tokens) >= m.limit
}

func (m *tokenManager) Forget(token string) {
	m.mu.Lock()
	delete(m.tokens, token)
	m.mu.Unlock()
}

// Sweep drops tombstones older than ttl and returns how many went.
func (m *tokenManager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweep(m.now())
}

func (m *tokenManager) sweep(now time.Time) int {
	m.lastSweep = now
	cutoff := now.Add(-m.ttl)
	removed := 0
	for token, expiresAt := range m.tokens {
		if expiresAt.Before(cutoff) {
			delete(m.tokens, token)
			removed++
		}
	}
	return removed
}

func (m *tokenManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}
