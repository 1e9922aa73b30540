package tokenstore

import (
	"context"
	"sync"
	"time"
)

// RevokedStore tracks tokens invalidated by logout before their natural
// expiry. Implementations must treat an unknown token as not revoked.
type RevokedStore interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type memoryStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
}

// NewMemoryStore returns an in-process store for single-instance deployments
// and tests.
func NewMemoryStore() RevokedStore {
	return &memoryStore{expires: map[string]time.Time{}}
}

func (ms *memoryStore) Revoke(_ context.Context, token string, ttl time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.purgeLocked()
	ms.expires[token] = time.Now().Add(ttl)
	return nil
}

func (ms *memoryStore) IsRevoked(_ context.Context, token string) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	exp, ok := ms.expires[token]
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		delete(ms.expires, token)
		return false, nil
	}
	return true, nil
}

func (ms *memoryStore) purgeLocked() {
	now := time.Now()
	for token, exp := range ms.expires {
		if now.After(exp) {
			delete(ms.expires, token)
		}
	}
}
