package cache

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// TieredSiteConfigCache reads through a local in-memory tier (L1) to a shared
// tier (L2). Invalidations delete from L2 and are broadcast so every process
// drops its L1 copy.
type TieredSiteConfigCache struct {
	l1          *InMemorySiteConfigCache
	l2          SiteConfigCache
	invalidator Invalidator
	l1TTL       time.Duration
	logger      *zap.Logger

	l1Hits int64
	l2Hits int64
	misses int64
}

// TieredOption configures a TieredSiteConfigCache.
type TieredOption func(*TieredSiteConfigCache)

// WithL1TTL bounds how long a process serves its local copy.
func WithL1TTL(ttl time.Duration) TieredOption {
	return func(c *TieredSiteConfigCache) {
		c.l1TTL = ttl
	}
}

// WithTieredLogger sets the logger for the cache
func WithTieredLogger(logger *zap.Logger) TieredOption {
	return func(c *TieredSiteConfigCache) {
		c.logger = logger
	}
}

// NewTieredSiteConfigCache combines l1 and l2. invalidator may be nil for a
// single process.
func NewTieredSiteConfigCache(l1 *InMemorySiteConfigCache, l2 SiteConfigCache, invalidator Invalidator, opts ...TieredOption) *TieredSiteConfigCache {
	c := &TieredSiteConfigCache{
		l1:          l1,
		l2:          l2,
		invalidator: invalidator,
		l1TTL:       30 * time.Second,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartInvalidationSubscription listens for invalidations from other
// processes. It blocks; run it in a goroutine.
func (c *TieredSiteConfigCache) StartInvalidationSubscription(ctx context.Context) error {
	if c.invalidator == nil {
		return nil
	}
	return c.invalidator.Subscribe(ctx, func(channelID int64) {
		_ = c.l1.Invalidate(ctx, channelID)
		c.logger.Debug("Dropped local site config", zap.Int64("channel_id", channelID))
	})
}

// Get checks L1 then L2, filling L1 on an L2 hit.
func (c *TieredSiteConfigCache) Get(ctx context.Context, channelID int64) (*SiteConfig, error) {
	if cfg, _ := c.l1.Get(ctx, channelID); cfg != nil {
		atomic.AddInt64(&c.l1Hits, 1)
		return cfg, nil
	}

	cfg, err := c.l2.Get(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		atomic.AddInt64(&c.misses, 1)
		return nil, nil
	}
	atomic.AddInt64(&c.l2Hits, 1)
	_ = c.l1.Set(ctx, channelID, cfg, c.l1TTL)
	return cfg, nil
}

// Set writes both tiers.
func (c *TieredSiteConfigCache) Set(ctx context.Context, channelID int64, cfg *SiteConfig, ttl time.Duration) error {
	if err := c.l2.Set(ctx, channelID, cfg, ttl); err != nil {
		return err
	}
	l1TTL := c.l1TTL
	if ttl > 0 && ttl < l1TTL {
		l1TTL = ttl
	}
	return c.l1.Set(ctx, channelID, cfg, l1TTL)
}

// Invalidate removes channelID from both tiers and tells other processes.
func (c *TieredSiteConfigCache) Invalidate(ctx context.Context, channelID int64) error {
	_ = c.l1.Invalidate(ctx, channelID)
	if err := c.l2.Invalidate(ctx, channelID); err != nil {
		return err
	}
	if c.invalidator != nil {
		if err := c.invalidator.Publish(ctx, channelID); err != nil {
			c.logger.Warn("Failed to broadcast site config invalidation",
				zap.Int64("channel_id", channelID),
				zap.Error(err))
		}
	}
	return nil
}

// Close stops the subscription and the L1 cleanup loop.
func (c *TieredSiteConfigCache) Close() error {
	if c.invalidator != nil {
		_ = c.invalidator.Close()
	}
	return c.l1.Close()
}

// Stats returns L1 hits, L2 hits and misses.
func (c *TieredSiteConfigCache) Stats() (l1Hits, l2Hits, misses int64) {
	return atomic.LoadInt64(&c.l1Hits), atomic.LoadInt64(&c.l2Hits), atomic.LoadInt64(&c.misses)
}

var _ SiteConfigCache = (*TieredSiteConfigCache)(nil)
