package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

// InMemorySiteConfigCache keeps site configurations in process memory. It is
// the only cache when Redis is not configured and the L1 tier otherwise.
type InMemorySiteConfigCache struct {
	entries sync.Map // map[int64]*cacheEntry
	ttl     time.Duration
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

type cacheEntry struct {
	value     *SiteConfig
	expiresAt time.Time
}

func (e *cacheEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryOption configures an InMemorySiteConfigCache.
type InMemoryOption func(*InMemorySiteConfigCache)

// WithInMemoryTTL sets the TTL used when Set is given zero.
func WithInMemoryTTL(ttl time.Duration) InMemoryOption {
	return func(c *InMemorySiteConfigCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryOption {
	return func(c *InMemorySiteConfigCache) {
		c.logger = logger
	}
}

// NewInMemorySiteConfigCache creates the cache and starts its cleanup loop.
// Call Close to stop it.
func NewInMemorySiteConfigCache(opts ...InMemoryOption) *InMemorySiteConfigCache {
	c := &InMemorySiteConfigCache{
		ttl:    DefaultSiteConfigTTL,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.cleanupExpired()
	return c
}

// Get returns the cached configuration of channelID, or nil.
func (c *InMemorySiteConfigCache) Get(_ context.Context, channelID int64) (*SiteConfig, error) {
	if value, ok := c.entries.Load(channelID); ok {
		entry := value.(*cacheEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			return entry.value, nil
		}
		c.entries.Delete(channelID)
	}
	atomic.AddInt64(&c.misses, 1)
	return nil, nil
}

// Set stores cfg for channelID. A nil cfg is ignored.
func (c *InMemorySiteConfigCache) Set(_ context.Context, channelID int64, cfg *SiteConfig, ttl time.Duration) error {
	if cfg == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	c.entries.Store(channelID, &cacheEntry{value: cfg, expiresAt: time.Now().Add(ttl)})
	c.logger.Debug("Cached site config",
		zap.Int64("channel_id", channelID),
		zap.Duration("ttl", ttl))
	return nil
}

// Invalidate removes channelID.
func (c *InMemorySiteConfigCache) Invalidate(_ context.Context, channelID int64) error {
	c.entries.Delete(channelID)
	return nil
}

// InvalidateAll empties the cache.
func (c *InMemorySiteConfigCache) InvalidateAll() {
	c.entries.Range(func(key, _ any) bool {
		c.entries.Delete(key)
		return true
	})
}

// Close stops the cleanup loop. Safe to call more than once.
func (c *InMemorySiteConfigCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// Stats returns hit and miss counts.
func (c *InMemorySiteConfigCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of stored entries, expired or not.
func (c *InMemorySiteConfigCache) Count() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (c *InMemorySiteConfigCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.doCleanup()
		}
	}
}

func (c *InMemorySiteConfigCache) doCleanup() int {
	removed := 0
	c.entries.Range(func(key, value any) bool {
		if value.(*cacheEntry).isExpired() {
			c.entries.Delete(key)
			removed++
		}
		return true
	})
	if removed > 0 {
		c.logger.Debug("Cleaned up expired site configs", zap.Int("removed", removed))
	}
	return removed
}

var _ SiteConfigCache = (*InMemorySiteConfigCache)(nil)
