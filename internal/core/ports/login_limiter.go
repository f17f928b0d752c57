package ports

import "context"

// LoginLimiter throttles repeated failed logins per key.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Failure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}
