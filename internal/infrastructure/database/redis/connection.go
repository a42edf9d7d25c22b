// internal/infrastructure/database/redis/connection.go
package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/luxury-storefront/internal/config"
)

const (
	dialTimeout  = 5 * time.Second
	opTimeout    = 3 * time.Second
	poolTimeout  = 4 * time.Second
	pingDeadline = 5 * time.Second
)

// Client wraps the go-redis client that backs guest carts, applied coupons,
// pending payment sessions and rate limiting.
type Client struct {
	Redis *redis.Client
}

// NewConnection connects to Redis and verifies the link with a ping
func NewConnection(cfg *config.Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,

		DialTimeout:  dialTimeout,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
		PoolTimeout:  poolTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingDeadline)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Println("✅ Redis connection established successfully")

	return &Client{
		Redis: rdb,
	}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.Redis.Close()
}

// GetClient returns the underlying client for services to use directly
func (c *Client) GetClient() *redis.Client {
	return c.Redis
}
