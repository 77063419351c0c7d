//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/auth"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/cache"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"github.com/cmlibra71/keenan-group-channels/internal/interfaces/http/middleware"
	"github.com/cmlibra71/keenan-group-channels/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSiteConfigCache(t *testing.T) {
	client := NewRedisClient(t)
	ctx := context.Background()
	c := cache.NewRedisSiteConfigCache(client, time.Minute)

	got, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	cfg := &cache.SiteConfig{
		Channel: models.Channel{Name: "Retail"},
		Site:    &models.Site{URL: "https://retail.example.com"},
	}
	require.NoError(t, c.Set(ctx, 1, cfg, 0))

	got, err = c.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Retail", got.Channel.Name)
	assert.Equal(t, "https://retail.example.com", got.Site.URL)

	require.NoError(t, c.Invalidate(ctx, 1))
	got, err = c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTieredSiteConfigCache_Invalidation(t *testing.T) {
	client := NewRedisClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	newTier := func() *cache.TieredSiteConfigCache {
		c := cache.NewTieredSiteConfigCache(
			cache.NewInMemorySiteConfigCache(),
			cache.NewRedisSiteConfigCache(client, time.Minute),
			cache.NewRedisInvalidator(client),
			cache.WithL1TTL(time.Minute),
		)
		t.Cleanup(func() { _ = c.Close() })
		return c
	}
	writer, reader := newTier(), newTier()
	go func() { _ = reader.StartInvalidationSubscription(ctx) }()

	testutil.AssertEventually(t, func() bool {
		subs, err := client.PubSubNumSub(ctx, cache.DefaultInvalidationChannel).Result()
		return err == nil && subs[cache.DefaultInvalidationChannel] > 0
	}, 5*time.Second, 20*time.Millisecond, "reader never subscribed")

	require.NoError(t, writer.Set(ctx, 9, &cache.SiteConfig{Channel: models.Channel{Name: "Wholesale"}}, 0))

	got, err := reader.Get(ctx, 9)
	require.NoError(t, err)
	require.NotNil(t, got)
	l1, l2, _ := reader.Stats()
	assert.Equal(t, int64(0), l1)
	assert.Equal(t, int64(1), l2)

	// the second read is served locally
	_, err = reader.Get(ctx, 9)
	require.NoError(t, err)
	l1, _, _ = reader.Stats()
	assert.Equal(t, int64(1), l1)

	require.NoError(t, writer.Invalidate(ctx, 9))
	testutil.AssertEventually(t, func() bool {
		got, err := reader.Get(ctx, 9)
		return err == nil && got == nil
	}, 5*time.Second, 20*time.Millisecond, "reader kept a stale site config")
}

func TestRedisIdempotencyStore(t *testing.T) {
	client := NewRedisClient(t)
	ctx := context.Background()
	store := cache.NewRedisIdempotencyStore(client, "")

	seen, err := store.IsProcessed(ctx, "checkout:1:abc")
	require.NoError(t, err)
	assert.False(t, seen)

	first, err := store.MarkProcessed(ctx, "checkout:1:abc", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := store.MarkProcessed(ctx, "checkout:1:abc", time.Minute)
	require.NoError(t, err)
	assert.False(t, again)

	seen, err = store.IsProcessed(ctx, "checkout:1:abc")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestRedisTokenBlacklist(t *testing.T) {
	client := NewRedisClient(t)
	ctx := context.Background()
	bl := auth.NewRedisTokenBlacklist(client)

	revoked, err := bl.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.AddToBlacklist(ctx, "jti-1", time.Minute))
	revoked, err = bl.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRedisRateLimiter(t *testing.T) {
	client := NewRedisClient(t)
	ctx := context.Background()
	limiter := middleware.NewRedisRateLimiter(client, "", 2, time.Minute)

	for i := 0; i < 2; i++ {
		d, err := limiter.Take(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
	d, err := limiter.Take(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Positive(t, d.RetryAfter)

	d, err = limiter.Take(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}
