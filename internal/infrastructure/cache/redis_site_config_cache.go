package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const siteConfigKeyPrefix = "storefront:site:"

// RedisSiteConfigCache stores site configurations as JSON in Redis so every
// storefront process of a channel shares them.
type RedisSiteConfigCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisSiteConfigCache creates the cache over client. The caller owns the
// client.
func NewRedisSiteConfigCache(client redis.UniversalClient, ttl time.Duration) *RedisSiteConfigCache {
	if ttl <= 0 {
		ttl = DefaultSiteConfigTTL
	}
	return &RedisSiteConfigCache{client: client, prefix: siteConfigKeyPrefix, ttl: ttl}
}

func (c *RedisSiteConfigCache) key(channelID int64) string {
	return c.prefix + strconv.FormatInt(channelID, 10)
}

// Get returns the cached configuration of channelID, or nil.
func (c *RedisSiteConfigCache) Get(ctx context.Context, channelID int64) (*SiteConfig, error) {
	data, err := c.client.Get(ctx, c.key(channelID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read site config: %w", err)
	}
	var cfg SiteConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode site config: %w", err)
	}
	return &cfg, nil
}

// Set stores cfg for channelID.
func (c *RedisSiteConfigCache) Set(ctx context.Context, channelID int64, cfg *SiteConfig, ttl time.Duration) error {
	if cfg == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode site config: %w", err)
	}
	if err := c.client.Set(ctx, c.key(channelID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write site config: %w", err)
	}
	return nil
}

// Invalidate removes channelID.
func (c *RedisSiteConfigCache) Invalidate(ctx context.Context, channelID int64) error {
	if err := c.client.Del(ctx, c.key(channelID)).Err(); err != nil {
		return fmt.Errorf("failed to delete site config: %w", err)
	}
	return nil
}

// Close is a no-op; the client belongs to the caller.
func (c *RedisSiteConfigCache) Close() error { return nil }

var _ SiteConfigCache = (*RedisSiteConfigCache)(nil)
