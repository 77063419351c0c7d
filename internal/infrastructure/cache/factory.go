package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// Factory builds the caches for one process. With Redis configured and
// reachable they share state through Redis; otherwise they fall back to
// memory when fallback is allowed.
type Factory struct {
	cfg                   config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	client                redis.UniversalClient
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// in-memory caches. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// WithClient uses an existing client instead of dialing cfg.
func WithClient(client redis.UniversalClient) FactoryOption {
	return func(f *Factory) {
		f.client = client
	}
}

// NewFactory creates a Factory.
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		cfg:                   cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Redis returns a connected client, or nil when Redis is not configured or
// is unreachable and fallback is allowed. The client is created once.
func (f *Factory) Redis(ctx context.Context) (redis.UniversalClient, error) {
	if f.client != nil {
		return f.client, nil
	}
	if f.cfg.Host == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     f.cfg.Addr(),
		Password: f.cfg.Password,
		DB:       f.cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory caches. "+
			"Cache state will not be shared between processes.",
			zap.String("addr", f.cfg.Addr()),
			zap.Error(err))
		return nil, nil
	}

	f.logger.Info("Connected to Redis", zap.String("addr", f.cfg.Addr()))
	f.client = client
	return client, nil
}

// SiteConfigCache returns a tiered cache over Redis, or an in-memory cache.
func (f *Factory) SiteConfigCache(ctx context.Context, ttl time.Duration) (SiteConfigCache, error) {
	client, err := f.Redis(ctx)
	if err != nil {
		return nil, err
	}
	l1 := NewInMemorySiteConfigCache(WithInMemoryTTL(ttl), WithInMemoryLogger(f.logger))
	if client == nil {
		return l1, nil
	}
	return NewTieredSiteConfigCache(l1,
		NewRedisSiteConfigCache(client, ttl),
		NewRedisInvalidator(client, WithInvalidatorLogger(f.logger)),
		WithTieredLogger(f.logger),
	), nil
}

// IdempotencyStore returns a Redis store, or an in-memory one.
func (f *Factory) IdempotencyStore(ctx context.Context) (shared.IdempotencyStore, error) {
	client, err := f.Redis(ctx)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return NewInMemoryIdempotencyStore(), nil
	}
	return NewRedisIdempotencyStore(client, ""), nil
}

// Close closes the Redis client if the factory opened one.
func (f *Factory) Close() error {
	if f.client == nil {
		return nil
	}
	return f.client.Close()
}
