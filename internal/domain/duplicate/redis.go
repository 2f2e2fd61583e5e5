package duplicate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisChecker struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedis constructs a redis-backed checker so the sighting index is
// shared across instances.
func NewRedis(cfg Config) (Checker, error) {
	if cfg.Redis == nil {
		return nil, fmt.Errorf("redis configuration missing")
	}
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis address required")
	}

	opts := &redis.Options{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.Redis.Prefix
	if prefix == "" {
		prefix = "duplicate:sighting:"
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &redisChecker{
		client: client,
		ttl:    ttl,
		prefix: prefix,
	}, nil
}

func (c *redisChecker) key(fingerprint string) string {
	return c.prefix + fingerprint
}

func (c *redisChecker) Check(ctx context.Context, fingerprint string) (Sighting, error) {
	count, err := c.client.Get(ctx, c.key(fingerprint)).Int()
	if err != nil {
		if err == redis.Nil {
			return Sighting{}, nil
		}
		return Sighting{}, err
	}
	return Sighting{
		Found:   true,
		Count:   count,
		Penalty: penaltyFor(count),
	}, nil
}

func (c *redisChecker) Record(ctx context.Context, fingerprint string) error {
	key := c.key(fingerprint)
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *redisChecker) Stats(ctx context.Context) (map[string]any, error) {
	size, err := c.client.DBSize(ctx).Result()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"type":  "redis",
		"total": size,
		"ttl":   int(c.ttl.Seconds()),
	}, nil
}

func (c *redisChecker) Close(context.Context) error {
	return c.client.Close()
}
