package sessions

import (
	"context"
	"sync"
	"time"
)

// RevocationStore remembers signed-out token IDs until the tokens would have
// expired on their own.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type MemoryStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (store *MemoryStore) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.pruneLocked()
	if expiresAt.After(store.now()) {
		store.revoked[tokenID] = expiresAt
	}
	return nil
}

func (store *MemoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	expiresAt, ok := store.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !expiresAt.After(store.now()) {
		delete(store.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

func (store *MemoryStore) pruneLocked() {
	now := store.now()
	for tokenID, expiresAt := range store.revoked {
		if !expiresAt.After(now) {
			delete(store.revoked, tokenID)
		}
	}
}
