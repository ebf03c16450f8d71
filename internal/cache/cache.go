// Package cache provides the small key/value surface shared by rate limiting,
// token revocation and dashboard caching.
package cache

import (
	"context"
	"time"
)

type Store interface {
	// Incr bumps a counter that lives for window from its first increment.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	SetFlag(ctx context.Context, key string, ttl time.Duration) error
	HasFlag(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const keyPrefix = "babybliss:"
