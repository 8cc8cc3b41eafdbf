package tiercache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/fieldserve/fieldkit/pkg/logger"
	"github.com/fieldserve/fieldkit/pkg/tiers"
)

const defaultKeyPrefix = "fieldkit:tier:"

// RedisCache is a Redis-backed tier cache shared across process instances,
// so an Invalidate issued by one instance is observed by all of them.
// Redis read failures degrade to cache misses; the resolver falls back to
// the account store.
type RedisCache struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
	log       *slog.Logger
}

// RedisOption configures a RedisCache.
type RedisOption func(*RedisCache)

// WithRedisTTL overrides the default entry lifetime. Non-positive values are ignored.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(c *RedisCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKeyPrefix overrides the Redis key prefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(c *RedisCache) {
		if prefix != "" {
			c.keyPrefix = prefix
		}
	}
}

// WithLogger sets the logger for degraded-mode reporting.
func WithLogger(log *slog.Logger) RedisOption {
	return func(c *RedisCache) {
		if log != nil {
			c.log = log
		}
	}
}

// NewRedisCache creates a Redis-backed tier cache with DefaultTTL.
// Panics if client is nil to fail fast during initialization.
func NewRedisCache(client *redis.Client, opts ...RedisOption) *RedisCache {
	if client == nil {
		panic("tiercache: redis client is required")
	}
	c := &RedisCache{
		client:    client,
		ttl:       DefaultTTL,
		keyPrefix: defaultKeyPrefix,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCache) key(contractorID uuid.UUID) string {
	return c.keyPrefix + contractorID.String()
}

func (c *RedisCache) Get(ctx context.Context, contractorID uuid.UUID) (tiers.Name, bool) {
	val, err := c.client.Get(ctx, c.key(contractorID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WarnContext(ctx, "tier cache read failed, treating as miss",
				logger.ContractorID(contractorID), logger.Error(err))
		}
		return "", false
	}
	return tiers.Name(val), true
}

func (c *RedisCache) Set(ctx context.Context, contractorID uuid.UUID, tier tiers.Name) error {
	// The TTL is enforced by Redis key expiry rather than a stored timestamp.
	return c.client.Set(ctx, c.key(contractorID), string(tier), c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, contractorID uuid.UUID) error {
	return c.client.Del(ctx, c.key(contractorID)).Err()
}

func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.keyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
