package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/datapath-backend/internal/apperr"
	"github.com/AnshRaj112/datapath-backend/internal/logging"
	"github.com/AnshRaj112/datapath-backend/internal/models"
	"github.com/AnshRaj112/datapath-backend/internal/repository/memory"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func seedUser(t *testing.T, users *memory.Users, id, email string) *models.User {
	t.Helper()
	u := &models.User{ID: id, Email: email, Name: "Test", AuthProvider: models.ProviderFirebase}
	require.NoError(t, users.Insert(context.Background(), u))
	return u
}

func newStore(c *clock, opts ...SessionStoreOption) (*SessionStore, *memory.Sessions, *memory.Users) {
	sessions := memory.NewSessions()
	users := memory.NewUsers()
	opts = append([]SessionStoreOption{WithSessionClock(c.now)}, opts...)
	return NewSessionStore(sessions, users, logging.Discard(), opts...), sessions, users
}

func TestSessionStore_IssueAndResolve(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	store, sessions, users := newStore(c)
	seedUser(t, users, "u-1", "a@example.com")

	token, err := store.Issue(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, token, 44)

	stored, err := sessions.FindByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, c.t.Add(SessionDuration), stored.ExpiresAt)
	assert.Equal(t, "u-1", stored.UserID)

	user, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)
}

func TestSessionStore_ResolveUnknownToken(t *testing.T) {
	store, _, _ := newStore(newClock())

	for _, token := range []string{"", "no-such-token"} {
		user, err := store.Resolve(context.Background(), token)
		assert.Nil(t, user)
		assert.True(t, apperr.Is(err, apperr.KindUnauthenticated), "token %q", token)
	}
}

func TestSessionStore_ExpiredSessionIsReaped(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	store, sessions, users := newStore(c)
	seedUser(t, users, "u-1", "a@example.com")

	token, err := store.Issue(ctx, "u-1")
	require.NoError(t, err)

	c.advance(SessionDuration - time.Second)
	_, err = store.Resolve(ctx, token)
	require.NoError(t, err)

	c.advance(2 * time.Second)
	_, err = store.Resolve(ctx, token)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
	assert.Equal(t, 0, sessions.Len())

	_, err = store.Resolve(ctx, token)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestSessionStore_OrphanedSession(t *testing.T) {
	ctx := context.Background()
	store, sessions, users := newStore(newClock())
	seedUser(t, users, "u-1", "a@example.com")

	token, err := store.Issue(ctx, "u-1")
	require.NoError(t, err)
	users.Delete("u-1")

	_, err = store.Resolve(ctx, token)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
	assert.Equal(t, 1, sessions.Len())
}

func TestSessionStore_ConcurrentSessionsRevokeIndependently(t *testing.T) {
	ctx := context.Background()
	store, _, users := newStore(newClock())
	seedUser(t, users, "u-1", "a@example.com")

	first, err := store.Issue(ctx, "u-1")
	require.NoError(t, err)
	second, err := store.Issue(ctx, "u-1")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	require.NoError(t, store.Revoke(ctx, first))

	_, err = store.Resolve(ctx, first)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
	user, err := store.Resolve(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
}

func TestSessionStore_RevokeIsIdempotent(t *testing.T) {
	store, sessions, _ := newStore(newClock())

	assert.NoError(t, store.Revoke(context.Background(), "unknown"))
	assert.NoError(t, store.Revoke(context.Background(), "unknown"))
	assert.NoError(t, store.Revoke(context.Background(), ""))
	assert.Equal(t, 2, sessions.Deletes())
}

type failingSessions struct{ *memory.Sessions }

func (failingSessions) FindByToken(context.Context, string) (*models.Session, error) {
	return nil, errors.New("connection reset")
}

func TestSessionStore_StoreFailureIsInternal(t *testing.T) {
	store := NewSessionStore(failingSessions{memory.NewSessions()}, memory.NewUsers(), logging.Discard())

	_, err := store.Resolve(context.Background(), "token")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func newRedisCache(t *testing.T) (*RedisSessionCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionCache(client), mr
}

func TestSessionStore_ReadThroughCache(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	cache, mr := newRedisCache(t)
	store, sessions, users := newStore(c, WithSessionCache(cache, 5*time.Minute))
	seedUser(t, users, "u-1", "a@example.com")

	token, err := store.Issue(ctx, "u-1")
	require.NoError(t, err)

	_, err = store.Resolve(ctx, token)
	require.NoError(t, err)

	key := CacheKey("session", token)
	require.True(t, mr.Exists(key))
	assert.Equal(t, 5*time.Minute, mr.TTL(key))

	// Served from the cache once the row is gone.
	require.NoError(t, sessions.DeleteByToken(ctx, token))
	user, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
}

func TestSessionStore_CacheTTLBoundedByExpiry(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	cache, mr := newRedisCache(t)
	store, _, users := newStore(c, WithSessionCache(cache, time.Hour))
	seedUser(t, users, "u-1", "a@example.com")

	token, err := store.Issue(ctx, "u-1")
	require.NoError(t, err)

	c.advance(SessionDuration - 10*time.Minute)
	_, err = store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, mr.TTL(CacheKey("session", token)))
}

func TestSessionStore_RevokeClearsCache(t *testing.T) {
	ctx := context.Background()
	cache, mr := newRedisCache(t)
	store, sessions, users := newStore(newClock(), WithSessionCache(cache, time.Minute))
	seedUser(t, users, "u-1", "a@example.com")

	token, err := store.Issue(ctx, "u-1")
	require.NoError(t, err)
	_, err = store.Resolve(ctx, token)
	require.NoError(t, err)

	require.NoError(t, store.Revoke(ctx, token))
	assert.False(t, mr.Exists(CacheKey("session", token)))
	assert.Equal(t, 0, sessions.Len())

	_, err = store.Resolve(ctx, token)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestSessionStore_ExpiredCacheEntryIsReaped(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	cache, mr := newRedisCache(t)
	store, sessions, users := newStore(c, WithSessionCache(cache, time.Hour))
	seedUser(t, users, "u-1", "a@example.com")

	token, err := store.Issue(ctx, "u-1")
	require.NoError(t, err)
	_, err = store.Resolve(ctx, token)
	require.NoError(t, err)

	c.advance(SessionDuration + time.Second)
	_, err = store.Resolve(ctx, token)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
	assert.False(t, mr.Exists(CacheKey("session", token)))
	assert.Equal(t, 0, sessions.Len())
}

func TestSessionStore_CacheOutageFallsThrough(t *testing.T) {
	ctx := context.Background()
	cache, mr := newRedisCache(t)
	store, _, users := newStore(newClock(), WithSessionCache(cache, time.Minute))
	seedUser(t, users, "u-1", "a@example.com")

	token, err := store.Issue(ctx, "u-1")
	require.NoError(t, err)
	mr.Close()

	user, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
}
