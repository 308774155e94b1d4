package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/campus/backend/internal/domain/tenancy"
	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

// InMemoryTenantCache implements tenancy.ContextCache in process memory.
// Entries are not shared between instances, so a suspension can take up to
// one TTL to be seen by every instance.
type InMemoryTenantCache struct {
	entries sync.Map // map[string]cacheEntry
	ttl     time.Duration
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

type cacheEntry struct {
	value     tenancy.TenantContext
	expiresAt time.Time
}

func (e cacheEntry) isExpired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// NewInMemoryTenantCache creates an in-memory cache with a background cleanup goroutine.
// Call Close to stop it.
func NewInMemoryTenantCache(opts ...Option) *InMemoryTenantCache {
	o := buildOptions(opts)
	c := &InMemoryTenantCache{
		ttl:    o.ttl,
		logger: o.logger,
		stopCh: make(chan struct{}),
	}
	go c.cleanupExpired()
	return c
}

// Get retrieves a tenant context from cache
func (c *InMemoryTenantCache) Get(_ context.Context, ref string) (*tenancy.TenantContext, error) {
	if v, ok := c.entries.Load(ref); ok {
		entry := v.(cacheEntry)
		if !entry.isExpired(time.Now()) {
			atomic.AddInt64(&c.hits, 1)
			tc := entry.value
			return &tc, nil
		}
		c.entries.Delete(ref)
	}
	atomic.AddInt64(&c.misses, 1)
	return nil, nil
}

// Set stores a tenant context in cache
func (c *InMemoryTenantCache) Set(_ context.Context, ref string, tc tenancy.TenantContext, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}
	c.entries.Store(ref, cacheEntry{value: tc, expiresAt: time.Now().Add(ttl)})
	return nil
}

// Delete removes cached tenant contexts
func (c *InMemoryTenantCache) Delete(_ context.Context, refs ...string) error {
	for _, ref := range refs {
		c.entries.Delete(ref)
	}
	return nil
}

// Close stops the cleanup goroutine
func (c *InMemoryTenantCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns cache statistics
func (c *InMemoryTenantCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of entries, expired ones included
func (c *InMemoryTenantCache) Count() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (c *InMemoryTenantCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case now := <-ticker.C:
			c.doCleanup(now)
		}
	}
}

func (c *InMemoryTenantCache) doCleanup(now time.Time) {
	removed := 0
	c.entries.Range(func(key, value any) bool {
		if value.(cacheEntry).isExpired(now) {
			c.entries.Delete(key)
			removed++
		}
		return true
	})
	if removed > 0 {
		c.logger.Debug("Cleaned up expired tenant cache entries", zap.Int("removed", removed))
	}
}

var _ tenancy.ContextCache = (*InMemoryTenantCache)(nil)
