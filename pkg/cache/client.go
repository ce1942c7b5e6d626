package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flipscope/flipscope/pkg/config"
	"github.com/flipscope/flipscope/pkg/logger"
)

// Client wraps the Redis connection. When Redis is disabled in config every
// operation is a no-op, so callers never branch on availability.
type Client struct {
	rdb     *redis.Client
	enabled bool
	logger  *logger.Logger
}

// NewClient creates a Redis client from config.
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	if !cfg.Redis.Enabled {
		log.Debug("Redis disabled, score cache is a no-op")
		return &Client{enabled: false, logger: log}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	return &Client{rdb: rdb, enabled: true, logger: log}
}

// Enabled reports whether Redis is configured and connected.
func (c *Client) Enabled() bool {
	return c.enabled
}

// Ping verifies connectivity. No-op when disabled.
func (c *Client) Ping(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close releases the connection. No-op when disabled.
func (c *Client) Close() error {
	if !c.enabled {
		return nil
	}
	return c.rdb.Close()
}

// GetBytes fetches a raw value. The second return is false on miss or when
// the client is disabled.
func (c *Client) GetBytes(ctx context.Context, key string) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		// Key not found is not an error worth surfacing.
		return nil, false
	}
	return data, true
}

// SetBytes stores a raw value with a TTL. No-op when disabled.
func (c *Client) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !c.enabled {
		return nil
	}
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Delete removes a key. No-op when disabled.
func (c *Client) Delete(ctx context.Context, key string) error {
	if !c.enabled {
		return nil
	}
	return c.rdb.Del(ctx, key).Err()
}
