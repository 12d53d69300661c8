package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
)

// CachedSession is the part of a session needed to resolve it.
type CachedSession struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionCache interface {
	Get(ctx context.Context, token string) (CachedSession, bool, error)
	Set(ctx context.Context, token string, s CachedSession, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}

// RedisSessionCache stores CachedSession values as JSON in Redis.
type RedisSessionCache struct {
	client *redis.Client
}

func NewRedisSessionCache(client *redis.Client) *RedisSessionCache {
	return &RedisSessionCache{client: client}
}

func (c *RedisSessionCache) Get(ctx context.Context, token string) (CachedSession, bool, error) {
	val, err := c.client.Get(ctx, CacheKey("session", token)).Result()
	if errors.Is(err, redis.Nil) {
		return CachedSession{}, false, nil // Cache miss, not an error
	}
	if err != nil {
		return CachedSession{}, false, err
	}

	var s CachedSession
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return CachedSession{}, false, err
	}
	return s, true, nil
}

func (c *RedisSessionCache) Set(ctx context.Context, token string, s CachedSession, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	jsonData, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, CacheKey("session", token), jsonData, ttl).Err()
}

func (c *RedisSessionCache) Delete(ctx context.Context, token string) error {
	return c.client.Del(ctx, CacheKey("session", token)).Err()
}

// CacheKey generates a cache key for a specific resource
func CacheKey(resource string, identifier string) string {
	return fmt.Sprintf("%s%s:%s", CacheKeyPrefix, resource, identifier)
}
