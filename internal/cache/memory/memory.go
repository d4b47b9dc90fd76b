// Package memory is an in-process cache used when no redis address is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aniladanir/hirechat/internal/cache"
)

type entry struct {
	value     string
	expiresAt time.Time
}

type Cache struct {
	mtx     sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func New() *Cache {
	return &Cache{entries: make(map[string]entry), now: time.Now}
}

func (c *Cache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.mtx.Lock()
	c.entries[key] = e
	c.mtx.Unlock()
	return nil
}

func (c *Cache) Get(_ context.Context, key string) (string, error) {
	c.mtx.RLock()
	e, ok := c.entries[key]
	c.mtx.RUnlock()
	if !ok || c.expired(e) {
		return "", cache.ErrMiss
	}
	return e.value, nil
}

func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	if _, err := c.Get(ctx, key); err != nil {
		return false, nil
	}
	return true, nil
}

func (c *Cache) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt)
}
