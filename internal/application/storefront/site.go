package storefront

import (
	"context"
	"fmt"

	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/cache"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Site returns the channel and its primary site, from cache when possible.
func (s *Storefront) Site(ctx context.Context) (*cache.SiteConfig, error) {
	cached, err := s.siteCache.Get(ctx, s.channelID)
	if err != nil {
		logger.L(ctx).Warn("Site config cache read failed", zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	ch, err := s.svc.Channels.GetByID(ctx, s.channelID)
	if err != nil {
		return nil, err
	}
	site, err := s.svc.Sites.GetPrimaryForChannel(ctx, s.channelID)
	if err != nil {
		return nil, fmt.Errorf("load primary site: %w", err)
	}

	cfg := &cache.SiteConfig{Channel: *ch, Site: site}
	if err := s.siteCache.Set(ctx, s.channelID, cfg, s.siteTTL); err != nil {
		logger.L(ctx).Warn("Site config cache write failed", zap.Error(err))
	}
	return cfg, nil
}
