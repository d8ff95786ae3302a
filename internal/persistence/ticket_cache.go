package persistence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// viewTTL keeps cached views no staler than one SLA recomputation tick.
const viewTTL = time.Minute

// TicketViewCache is a best-effort read-through cache for assembled ticket
// detail views. Every error degrades to a cache miss; the store of record is
// always Postgres.
type TicketViewCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewTicketViewCache builds the cache on top of the shared Redis client.
func NewTicketViewCache(r *Redis, logger *zap.Logger) *TicketViewCache {
	if r == nil {
		return &TicketViewCache{logger: logger}
	}
	return &TicketViewCache{client: r.Client, logger: logger}
}

// Get returns the cached payload for a view key, if any.
func (c *TicketViewCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, viewKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("ticket view cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return payload, true
}

// Set stores the payload under a view key.
func (c *TicketViewCache) Set(ctx context.Context, key string, payload []byte) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, viewKey(key), payload, viewTTL).Err(); err != nil {
		c.logger.Debug("ticket view cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops a cached view after a ticket mutation.
func (c *TicketViewCache) Invalidate(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, viewKey(key)).Err(); err != nil {
		c.logger.Debug("ticket view cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}

func viewKey(key string) string {
	return "ticket:view:" + key
}
