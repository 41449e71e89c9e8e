// Package local is the in-process zone payload tier.
package local

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type entry struct {
	val     []byte
	expires time.Time
}

// Cache is a size-bounded LRU with per-entry expiry. Expired entries are
// dropped lazily on read.
type Cache struct {
	lru *lru.Cache[string, entry]
	now func() time.Time
}

func New(size int) (*Cache, error) {
	if size <= 0 {
		size = 1
	}
	l, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l, now: time.Now}, nil
}

func (c *Cache) MGet(_ context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	now := c.now()
	for _, k := range keys {
		e, ok := c.lru.Get(k)
		if !ok {
			continue
		}
		if !e.expires.IsZero() && !now.Before(e.expires) {
			c.lru.Remove(k)
			continue
		}
		out[k] = e.val
	}
	return out, nil
}

// Set stores val; a non-positive ttl never expires.
func (c *Cache) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	e := entry{val: val}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.lru.Add(key, e)
	return nil
}

func (c *Cache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.lru.Remove(k)
	}
	return nil
}

func (c *Cache) Len() int { return c.lru.Len() }
