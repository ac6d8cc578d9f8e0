package store

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	tb "github.com/transitcore/tripbased"
	"github.com/transitcore/tripbased/transfer"
)

// RedisCached is a cache-aside decorator around a backing TransferStore,
// grounded on wabus's CacheWarmer/RedisCache split: Get serves from Redis
// when present, otherwise falls through to backing and populates Redis for
// next time; Put always goes straight to backing and then refreshes the
// cache entry. If that refresh fails, Put only logs a warning and the old
// cache entry keeps being served until its TTL expires.
type RedisCached struct {
	backing TransferStore
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	logger  *slog.Logger
}

func NewRedisCached(backing TransferStore, client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCached {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCached{
		backing: backing,
		client:  client,
		prefix:  "tripbased:transfers:",
		ttl:     ttl,
		logger:  logger.With("component", "transfer_store_cache"),
	}
}

func (c *RedisCached) key(day tb.ServiceDay) string {
	return c.prefix + day.String()
}

func (c *RedisCached) Get(ctx context.Context, day tb.ServiceDay) (*transfer.Map, error) {
	raw, err := c.client.Get(ctx, c.key(day)).Bytes()
	if err == nil {
		m, decodeErr := decodeMap(bytes.NewReader(raw))
		if decodeErr == nil {
			c.logger.Debug("cache hit", "service_day", day)
			return m, nil
		}
		c.logger.Warn("discarding corrupt cache entry", "service_day", day, "error", decodeErr)
	} else if err != redis.Nil {
		c.logger.Warn("cache read failed, falling back to backing store", "service_day", day, "error", err)
	}

	m, err := c.backing.Get(ctx, day)
	if err != nil {
		return nil, err
	}
	if err := c.store(ctx, day, m); err != nil {
		c.logger.Warn("failed to populate cache after backing read", "service_day", day, "error", err)
	}
	return m, nil
}

func (c *RedisCached) Put(ctx context.Context, day tb.ServiceDay, m *transfer.Map) error {
	if err := c.backing.Put(ctx, day, m); err != nil {
		return err
	}
	if err := c.store(ctx, day, m); err != nil {
		c.logger.Warn("failed to refresh cache after write", "service_day", day, "error", err)
	}
	return nil
}

func (c *RedisCached) store(ctx context.Context, day tb.ServiceDay, m *transfer.Map) error {
	var buf bytes.Buffer
	if err := encodeMap(&buf, m); err != nil {
		return fmt.Errorf("store: encoding transfer map for cache: %w", err)
	}
	return c.client.Set(ctx, c.key(day), buf.Bytes(), c.ttl).Err()
}
