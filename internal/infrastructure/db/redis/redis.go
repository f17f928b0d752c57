// Package redis holds the Redis-backed stores: checkout reservations and the
// failed-login limiter.
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTimeout  = 5 * time.Second
	defaultPoolSize = 20

	// keyspace prefixes every key this package writes.
	keyspace = "storefront"
)

// Config captures the settings for establishing a Redis connection.
type Config struct {
	Addr     string
	Password string
	DB       int
	// Timeout bounds dialing and the startup ping. Defaults to 5s.
	Timeout  time.Duration
	PoolSize int
}

// Connect builds a client and pings it once so startup fails fast when Redis
// is unreachable.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	pool := cfg.PoolSize
	if pool <= 0 {
		pool = defaultPoolSize
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: timeout,
		PoolSize:    pool,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// key joins parts under the package keyspace, e.g.
// storefront:reservation:order_123.
func key(parts ...string) string {
	return keyspace + ":" + strings.Join(parts, ":")
}
