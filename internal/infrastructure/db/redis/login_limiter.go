package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxFailures = 5
	defaultLockWindow  = 15 * time.Minute
)

// LoginLimiter counts failed logins in a fixed window.
// Key format: storefront:login:fail:<email>
type LoginLimiter struct {
	client      *redis.Client
	maxFailures int64
	window      time.Duration
}

// NewLoginLimiter locks a key for window after maxFailures failures.
// Non-positive arguments select the defaults.
func NewLoginLimiter(client *redis.Client, maxFailures int, window time.Duration) *LoginLimiter {
	if maxFailures <= 0 {
		maxFailures = defaultMaxFailures
	}
	if window <= 0 {
		window = defaultLockWindow
	}
	return &LoginLimiter{client: client, maxFailures: int64(maxFailures), window: window}
}

// Allow reports whether key is still below the failure threshold.
func (l *LoginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := l.client.Get(ctx, l.key(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, fmt.Errorf("login limiter: %w", err)
	}
	return n < l.maxFailures, nil
}

// Failure counts one failed attempt. The window starts at the first failure.
func (l *LoginLimiter) Failure(ctx context.Context, key string) error {
	k := l.key(key)
	pipe := l.client.TxPipeline()
	pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("login limiter: %w", err)
	}
	return nil
}

func (l *LoginLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("login limiter: %w", err)
	}
	return nil
}

func (l *LoginLimiter) key(id string) string {
	return key("login", "fail", strings.ToLower(id))
}
