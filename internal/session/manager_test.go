package session

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Vikas210-dev/cyber-new/internal/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestStoreClientTokenComputesAbsoluteExpiry(t *testing.T) {
	store := NewMemoryStore(0)
	base := time.UnixMilli(1_700_000_000_000)
	mgr := NewManager(store, "sid-1").WithClock(fixedClock(base))
	ctx := context.Background()

	gen, err := mgr.Generation(ctx)
	require.NoError(t, err)

	err = mgr.StoreClientToken(ctx, domain.TokenGrant{
		Token:     "abc",
		TokenType: "Bearer",
		ExpiresIn: 3600,
	}, gen)
	require.NoError(t, err)

	token, ok := mgr.ClientToken(ctx)
	require.True(t, ok)
	require.Equal(t, "abc", token.Value)
	require.Equal(t, "Bearer", token.TokenType)
	require.Equal(t, base.UnixMilli()+3_600_000, token.ExpiresAt)
}

func TestClientTokenValidityBoundary(t *testing.T) {
	store := NewMemoryStore(0)
	base := time.UnixMilli(1_700_000_000_000)
	mgr := NewManager(store, "sid-1").WithClock(fixedClock(base))
	ctx := context.Background()

	require.NoError(t, mgr.StoreClientToken(ctx, domain.TokenGrant{
		Token: "abc", TokenType: "Bearer", ExpiresIn: 60,
	}, 0))

	require.True(t, mgr.IsClientTokenValid(ctx))

	// One millisecond before expiry is still valid.
	mgr.WithClock(fixedClock(base.Add(60*time.Second - time.Millisecond)))
	require.True(t, mgr.IsClientTokenValid(ctx))

	// Exactly at the expiry instant the token is expired.
	mgr.WithClock(fixedClock(base.Add(60 * time.Second)))
	require.False(t, mgr.IsClientTokenValid(ctx))
}

func TestValidityFalseWhenAbsent(t *testing.T) {
	store := NewMemoryStore(0)
	mgr := NewManager(store, "sid-1")
	ctx := context.Background()

	require.False(t, mgr.IsClientTokenValid(ctx))
	require.False(t, mgr.IsUserTokenValid(ctx))
	require.False(t, mgr.IsAuthenticated(ctx))
}

func TestValidityFalseWhenExpiryMalformed(t *testing.T) {
	store := NewMemoryStore(0)
	mgr := NewManager(store, "sid-1")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "sid-1", keyToken, "abc"))
	require.NoError(t, store.Set(ctx, "sid-1", keyTokenExpiry, "not-a-number"))

	require.False(t, mgr.IsClientTokenValid(ctx))
}

func TestStoreUserTokensRefreshPairConditional(t *testing.T) {
	store := NewMemoryStore(0)
	base := time.UnixMilli(1_700_000_000_000)
	mgr := NewManager(store, "sid-1").WithClock(fixedClock(base))
	ctx := context.Background()

	require.NoError(t, mgr.StoreUserTokens(ctx, domain.TokenGrant{
		Token: "user-token", TokenType: "Bearer", ExpiresIn: 300,
	}, 0))

	sess, ok := mgr.UserSession(ctx)
	require.True(t, ok)
	require.Equal(t, "user-token", sess.Token)
	require.Empty(t, sess.RefreshToken)
	require.Zero(t, sess.RefreshExpiresAt)

	require.NoError(t, mgr.StoreUserTokens(ctx, domain.TokenGrant{
		Token: "user-token-2", TokenType: "Bearer", ExpiresIn: 300,
		RefreshToken: "r1", RefreshExpiresIn: 1800,
	}, 0))

	sess, ok = mgr.UserSession(ctx)
	require.True(t, ok)
	require.Equal(t, "user-token-2", sess.Token)
	require.Equal(t, "r1", sess.RefreshToken)
	require.Equal(t, base.UnixMilli()+1_800_000, sess.RefreshExpiresAt)
}

func TestClearAuthEmptiesSession(t *testing.T) {
	store := NewMemoryStore(0)
	base := time.UnixMilli(1_700_000_000_000)
	mgr := NewManager(store, "sid-1").WithClock(fixedClock(base))
	ctx := context.Background()

	require.NoError(t, mgr.StoreClientToken(ctx, domain.TokenGrant{
		Token: "abc", TokenType: "Bearer", ExpiresIn: 3600,
	}, 0))
	require.NoError(t, mgr.StoreUserTokens(ctx, domain.TokenGrant{
		Token: "user", TokenType: "Bearer", ExpiresIn: 300,
		RefreshToken: "r1", RefreshExpiresIn: 1800,
	}, 0))

	require.NoError(t, mgr.ClearAuth(ctx))

	require.False(t, mgr.IsClientTokenValid(ctx))
	require.False(t, mgr.IsUserTokenValid(ctx))

	_, ok := mgr.ClientToken(ctx)
	require.False(t, ok)
	_, ok = mgr.UserSession(ctx)
	require.False(t, ok)

	for _, key := range authKeys {
		value, err := store.Get(ctx, "sid-1", key)
		require.NoError(t, err)
		require.Empty(t, value, "key %s should be removed", key)
	}
}

func TestClearAuthDiscardsInFlightWrite(t *testing.T) {
	store := NewMemoryStore(0)
	mgr := NewManager(store, "sid-1")
	ctx := context.Background()

	// Snapshot the generation as a token round trip would, then log out
	// before the write lands.
	gen, err := mgr.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, mgr.ClearAuth(ctx))

	err = mgr.StoreClientToken(ctx, domain.TokenGrant{
		Token: "stale", TokenType: "Bearer", ExpiresIn: 3600,
	}, gen)
	require.ErrorIs(t, err, domain.ErrSessionCleared)

	_, ok := mgr.ClientToken(ctx)
	require.False(t, ok)

	err = mgr.StoreUserTokens(ctx, domain.TokenGrant{
		Token: "stale", TokenType: "Bearer", ExpiresIn: 300,
	}, gen)
	require.ErrorIs(t, err, domain.ErrSessionCleared)
	require.False(t, mgr.IsAuthenticated(ctx))
}

func TestGenerationIncrementsPerClear(t *testing.T) {
	store := NewMemoryStore(0)
	mgr := NewManager(store, "sid-1")
	ctx := context.Background()

	gen, err := mgr.Generation(ctx)
	require.NoError(t, err)
	require.Zero(t, gen)

	require.NoError(t, mgr.ClearAuth(ctx))
	require.NoError(t, mgr.ClearAuth(ctx))

	gen, err = mgr.Generation(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), gen)

	// A write carrying the current generation succeeds after logout.
	require.NoError(t, mgr.StoreClientToken(ctx, domain.TokenGrant{
		Token: "fresh", TokenType: "Bearer", ExpiresIn: 3600,
	}, gen))
	token, ok := mgr.ClientToken(ctx)
	require.True(t, ok)
	require.Equal(t, "fresh", token.Value)
}

func TestSessionsAreIsolated(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	a := NewManager(store, "sid-a")
	b := NewManager(store, "sid-b")

	require.NoError(t, a.StoreClientToken(ctx, domain.TokenGrant{
		Token: "token-a", TokenType: "Bearer", ExpiresIn: 3600,
	}, 0))

	_, ok := b.ClientToken(ctx)
	require.False(t, ok)

	require.NoError(t, b.ClearAuth(ctx))
	token, ok := a.ClientToken(ctx)
	require.True(t, ok)
	require.Equal(t, "token-a", token.Value)
}

func TestExpiryStoredAsEpochMillisString(t *testing.T) {
	store := NewMemoryStore(0)
	base := time.UnixMilli(1_700_000_000_000)
	mgr := NewManager(store, "sid-1").WithClock(fixedClock(base))
	ctx := context.Background()

	require.NoError(t, mgr.StoreClientToken(ctx, domain.TokenGrant{
		Token: "abc", TokenType: "Bearer", ExpiresIn: 120,
	}, 0))

	raw, err := store.Get(ctx, "sid-1", keyTokenExpiry)
	require.NoError(t, err)
	require.Equal(t, strconv.FormatInt(base.UnixMilli()+120_000, 10), raw)
}
