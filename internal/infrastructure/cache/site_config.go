// Package cache holds the storefront caches: the per-channel site
// configuration and the checkout idempotency keys. Each has an in-memory
// implementation and a Redis one for deployments running several processes.
package cache

import (
	"context"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

// DefaultSiteConfigTTL is used when a cache is given a zero TTL.
const DefaultSiteConfigTTL = 5 * time.Minute

// SiteConfig is what a storefront needs to render its shell: the channel it
// is bound to and that channel's primary site, if any.
type SiteConfig struct {
	Channel models.Channel `json:"channel"`
	Site    *models.Site   `json:"site"`
}

// SiteConfigCache stores SiteConfig values by channel id. Get returns
// (nil, nil) on a miss.
type SiteConfigCache interface {
	Get(ctx context.Context, channelID int64) (*SiteConfig, error)
	Set(ctx context.Context, channelID int64, cfg *SiteConfig, ttl time.Duration) error
	Invalidate(ctx context.Context, channelID int64) error
	Close() error
}

// Notifier drops a channel's cached configuration when the channel or one of
// its sites changes.
type Notifier struct {
	cache  SiteConfigCache
	logger *zap.Logger
}

// NewNotifier creates a Notifier for c.
func NewNotifier(c SiteConfigCache, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{cache: c, logger: logger}
}

// ChannelChanged invalidates channelID. Failures are logged; the entry still
// expires on its TTL.
func (n *Notifier) ChannelChanged(ctx context.Context, channelID int64) {
	if err := n.cache.Invalidate(ctx, channelID); err != nil {
		n.logger.Warn("Failed to invalidate site config",
			zap.Int64("channel_id", channelID),
			zap.Error(err))
	}
}
