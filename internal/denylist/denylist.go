// Package denylist records revoked session token IDs until the tokens
// would have expired anyway.
package denylist

import (
	"context"
	"sync"
	"time"
)

// Denylist is the token revocation store.
type Denylist interface {
	// Revoke blocks jti until the given time.
	Revoke(ctx context.Context, jti string, until time.Time) error
	// IsRevoked reports whether jti is blocked.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Memory is an in-process Denylist. Entries vanish on restart.
type Memory struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemory returns an empty Memory denylist.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]time.Time), now: time.Now}
}

// Revoke implements Denylist.
func (m *Memory) Revoke(_ context.Context, jti string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prune()
	if until.After(m.now()) {
		m.entries[jti] = until
	}
	return nil
}

// IsRevoked implements Denylist.
func (m *Memory) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.entries[jti]
	if !ok {
		return false, nil
	}
	if !until.After(m.now()) {
		delete(m.entries, jti)
		return false, nil
	}
	return true, nil
}

// prune drops expired entries. Callers hold m.mu.
func (m *Memory) prune() {
	now := m.now()
	for k, until := range m.entries {
		if !until.After(now) {
			delete(m.entries, k)
		}
	}
}
