package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/datapath-backend/internal/apperr"
	"github.com/AnshRaj112/datapath-backend/internal/logging"
	"github.com/AnshRaj112/datapath-backend/pkg/clientip"
	"github.com/AnshRaj112/datapath-backend/pkg/utils"
)

const (
	// RateLimitWindow is 120 seconds
	RateLimitWindow = 120 * time.Second
	// RateLimitMaxRequests is the number of sign-in attempts allowed per window
	RateLimitMaxRequests = 25
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:"
)

// RedisRateLimiter is a fixed-window counter per client IP shared by every
// instance behind the same Redis. It fails open when Redis is unavailable.
type RedisRateLimiter struct {
	client     *redis.Client
	limit      int
	window     time.Duration
	trustProxy bool
	log        logging.Logger
	now        func() time.Time
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration, trustProxy bool, log logging.Logger) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:     client,
		limit:      limit,
		window:     window,
		trustProxy: trustProxy,
		log:        log,
		now:        time.Now,
	}
}

// count increments the caller's counter, starting the window on first use.
func (l *RedisRateLimiter) count(ctx context.Context, key string) (int64, time.Duration, error) {
	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if n == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return 0, 0, err
		}
		return n, l.window, nil
	}
	ttl, err := l.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	return n, ttl, nil
}

// Middleware limits requests to paths for which match returns true.
// A nil match limits every request.
func (l *RedisRateLimiter) Middleware(match func(path string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if match != nil && !match(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientip.ClientIP(r, l.trustProxy)
			count, ttl, err := l.count(r.Context(), RateLimitKeyPrefix+ip)
			if err != nil {
				l.log.Warn(r.Context(), "rate limit check failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if ttl < 0 {
				ttl = l.window
			}

			remaining := int64(l.limit) - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(l.now().Add(ttl).Unix(), 10))

			if count > int64(l.limit) {
				w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))
				l.log.Warn(r.Context(), "rate limit exceeded", "ip", ip, "path", r.URL.Path)
				utils.RespondWithError(w, apperr.RateLimited("Rate limit exceeded. Please try again later."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsLoginPath reports whether path issues sessions.
func IsLoginPath(path string) bool {
	return LoginPaths[path]
}
