package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := NewRedisSessionStore(client, DefaultSessionPrefix, DefaultSessionTTL)
	require.NoError(t, err)
	return store, mr
}

func TestRedisSessionStore_IssueResolve(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	userID := uuid.New()

	token, err := store.Issue(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, token, 43) // 32 bytes, unpadded base64url

	assert.True(t, mr.Exists("auth_"+token))
	assert.Equal(t, DefaultSessionTTL, mr.TTL("auth_"+token))

	got, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestRedisSessionStore_TokensAreUnique(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()
	userID := uuid.New()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := store.Issue(ctx, userID)
		require.NoError(t, err)
		assert.False(t, seen[token], "duplicate token issued")
		seen[token] = true
	}

	// all sessions of the same user stay valid
	for token := range seen {
		got, err := store.Resolve(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, userID, got)
	}
}

func TestRedisSessionStore_Expiry(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	token, err := store.Issue(ctx, uuid.New())
	require.NoError(t, err)

	mr.FastForward(DefaultSessionTTL - time.Minute)
	_, err = store.Resolve(ctx, token)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRedisSessionStore_RevokeIsIdempotent(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	token, err := store.Issue(ctx, uuid.New())
	require.NoError(t, err)

	require.NoError(t, store.Revoke(ctx, token))
	assert.False(t, mr.Exists("auth_"+token))

	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)

	assert.NoError(t, store.Revoke(ctx, token))
	assert.NoError(t, store.Revoke(ctx, "never-issued"))
}

func TestRedisSessionStore_ResolveFailsClosed(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	_, err := store.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, mr.Set("auth_garbage", "not-a-uuid"))
	_, err = store.Resolve(ctx, "garbage")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRedisSessionStore_StoreDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()

	store, err := NewRedisSessionStore(client, DefaultSessionPrefix, time.Hour)
	require.NoError(t, err)

	mr.Close()
	ctx := context.Background()

	_, err = store.Issue(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrSessionStoreUnavailable)

	_, err = store.Resolve(ctx, "whatever")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestNewRedisSessionStore_NilClient(t *testing.T) {
	_, err := NewRedisSessionStore(nil, "", time.Hour)
	assert.Error(t, err)
}

func TestMemorySessionStore_Lifecycle(t *testing.T) {
	store := NewMemorySessionStore(time.Hour)
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()
	userID := uuid.New()

	token, err := store.Issue(ctx, userID)
	require.NoError(t, err)

	got, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	now = now.Add(time.Hour)
	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)

	token, err = store.Issue(ctx, userID)
	require.NoError(t, err)
	require.NoError(t, store.Revoke(ctx, token))
	require.NoError(t, store.Revoke(ctx, token))
	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}
