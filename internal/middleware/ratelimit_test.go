package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/datapath-backend/internal/logging"
)

func newLimiter(t *testing.T, limit int) (*RedisRateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRateLimiter(client, limit, time.Minute, false, logging.Discard()), mr
}

func signIn(h http.Handler, path string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.RemoteAddr = "192.0.2.1:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestRedisRateLimiter_FixedWindow(t *testing.T) {
	limiter, mr := newLimiter(t, 2)
	h := limiter.Middleware(IsLoginPath)(ok)

	first := signIn(h, "/api/auth/emergent/session")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, time.Minute, mr.TTL(RateLimitKeyPrefix+"192.0.2.1"))

	assert.Equal(t, http.StatusOK, signIn(h, "/api/auth/emergent/session").Code)

	blocked := signIn(h, "/api/auth/firebase/verify")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "60", blocked.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"detail":"Rate limit exceeded. Please try again later.","code":"rate_limited"}`, blocked.Body.String())

	// Other paths are not counted.
	assert.Equal(t, http.StatusOK, signIn(h, "/api/topics").Code)

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, signIn(h, "/api/auth/emergent/session").Code)
}

func TestRedisRateLimiter_FailsOpen(t *testing.T) {
	limiter, mr := newLimiter(t, 1)
	h := limiter.Middleware(nil)(ok)
	mr.Close()

	for i := 0; i < 3; i++ {
		rec := signIn(h, "/api/anything")
		require.Equal(t, http.StatusOK, rec.Code)
	}
}
