// Package knowledgeredis keeps the assistant to index mapping in Redis so
// every server instance shares it.
package knowledgeredis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abraxas-365/mosaic/pkg/knowledge"
	"github.com/redis/go-redis/v9"
)

// RedisCache implements knowledge.IndexCache backed by Redis.
type RedisCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

var _ knowledge.IndexCache = (*RedisCache)(nil)

// NewRedisCache creates a cache. A zero ttl keeps entries forever.
func NewRedisCache(rdb redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func indexKey(assistantID string) string { return fmt.Sprintf("knowledge:index:%s", assistantID) }

func (c *RedisCache) Get(ctx context.Context, assistantID string) (string, bool, error) {
	id, err := c.rdb.Get(ctx, indexKey(assistantID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, redisErrors.NewWithCause(ErrGet, err).WithDetail("assistant_id", assistantID)
	}
	return id, true, nil
}

func (c *RedisCache) Set(ctx context.Context, assistantID, indexID string) error {
	if err := c.rdb.Set(ctx, indexKey(assistantID), indexID, c.ttl).Err(); err != nil {
		return redisErrors.NewWithCause(ErrSet, err).WithDetail("assistant_id", assistantID)
	}
	return nil
}
