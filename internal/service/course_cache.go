package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lumora/learnhub-backend/internal/config"
)

// CourseCache is the keyed response cache for course list/top endpoints.
type CourseCache interface {
	// Get returns the cached payload for key, or ok=false on miss.
	Get(ctx context.Context, key string) (payload []byte, ok bool, err error)
	Set(ctx context.Context, key string, payload []byte) error
	// Invalidate deletes every course list key plus the top-courses key.
	// Deleting keys that do not exist is a no-op.
	Invalidate(ctx context.Context) error
}

// RedisCourseCache implements CourseCache on a Redis client with a bounded TTL.
type RedisCourseCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCourseCache creates a RedisCourseCache.
func NewRedisCourseCache(rdb *redis.Client, ttl time.Duration) *RedisCourseCache {
	return &RedisCourseCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCourseCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	return payload, true, nil
}

func (c *RedisCourseCache) Set(ctx context.Context, key string, payload []byte) error {
	return c.rdb.Set(ctx, key, payload, c.ttl).Err()
}

func (c *RedisCourseCache) Invalidate(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, config.CacheKey.CourseListPattern(), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan list keys: %w", err)
	}

	keys = append(keys, config.CacheKey.TopCoursesKey())
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete cache keys: %w", err)
	}
	return nil
}
