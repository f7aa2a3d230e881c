package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRevokesUntilExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "token-1", now.Add(time.Hour)))

	revoked, err := store.IsRevoked(ctx, "token-1")
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "token-2")
	require.NoError(t, err)
	require.False(t, revoked)

	now = now.Add(2 * time.Hour)
	revoked, err = store.IsRevoked(ctx, "token-1")
	require.NoError(t, err)
	require.False(t, revoked, "revocation should lapse once the token itself has expired")
}

func TestMemoryStoreIgnoresAlreadyExpiredTokens(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Revoke(context.Background(), "stale", now.Add(-time.Minute)))
	require.Empty(t, store.revoked)
}

func TestRevokedTokenKeyIsNamespaced(t *testing.T) {
	t.Parallel()

	require.Equal(t, "rentguard:revoked:abc", revokedTokenKey("abc"))
}
