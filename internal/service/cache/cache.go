package cache

import (
	"context"
	"time"
)

// Service stores JSON-encodable values under string keys with a TTL.
// Get reports whether the key was present; a miss is not an error.
type Service interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)
