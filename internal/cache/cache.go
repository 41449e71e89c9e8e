// Package cache defines the tiers that hold raw backend zone payloads.
package cache

import (
	"context"
	"time"
)

// Interface is implemented by the in-process LRU and by Redis. MGet omits
// missing keys from the result.
type Interface interface {
	MGet(ctx context.Context, keys []string) (map[string][]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
