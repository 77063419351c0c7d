package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/config"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func siteConfig(id int64, name string) *SiteConfig {
	return &SiteConfig{
		Channel: models.Channel{Name: name},
		Site:    &models.Site{ChannelID: id, URL: "https://" + name + ".example.com"},
	}
}

func TestInMemorySiteConfigCache(t *testing.T) {
	c := NewInMemorySiteConfigCache(WithInMemoryTTL(time.Minute))
	defer c.Close()
	ctx := context.Background()

	got, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, 1, siteConfig(1, "retail"), 0))
	require.NoError(t, c.Set(ctx, 2, nil, 0))

	got, err = c.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "retail", got.Channel.Name)
	assert.Equal(t, 1, c.Count())

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)

	require.NoError(t, c.Invalidate(ctx, 1))
	got, _ = c.Get(ctx, 1)
	assert.Nil(t, got)
}

func TestInMemorySiteConfigCache_Expiry(t *testing.T) {
	c := NewInMemorySiteConfigCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 1, siteConfig(1, "retail"), time.Nanosecond))
	require.NoError(t, c.Set(ctx, 2, siteConfig(2, "trade"), time.Hour))
	time.Sleep(time.Millisecond)

	assert.Equal(t, 1, c.doCleanup())
	got, _ := c.Get(ctx, 1)
	assert.Nil(t, got)

	c.InvalidateAll()
	assert.Zero(t, c.Count())
}

// fakeInvalidator delivers published ids to subscribers in-process.
type fakeInvalidator struct {
	mu        sync.Mutex
	published []int64
	subs      []func(int64)
}

func (f *fakeInvalidator) Publish(_ context.Context, id int64) error {
	f.mu.Lock()
	subs := append([]func(int64){}, f.subs...)
	f.published = append(f.published, id)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(id)
	}
	return nil
}

func (f *fakeInvalidator) Subscribe(ctx context.Context, fn func(int64)) error {
	f.mu.Lock()
	f.subs = append(f.subs, fn)
	f.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeInvalidator) Close() error { return nil }

func (f *fakeInvalidator) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func TestTieredSiteConfigCache(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shared := NewInMemorySiteConfigCache()
	defer shared.Close()
	inv := &fakeInvalidator{}

	a := NewTieredSiteConfigCache(NewInMemorySiteConfigCache(), shared, inv)
	b := NewTieredSiteConfigCache(NewInMemorySiteConfigCache(), shared, inv)
	defer a.Close()
	defer b.Close()
	go func() { _ = a.StartInvalidationSubscription(ctx) }()
	go func() { _ = b.StartInvalidationSubscription(ctx) }()
	require.Eventually(t, func() bool { return inv.subscribers() == 2 }, time.Second, time.Millisecond)

	require.NoError(t, a.Set(ctx, 7, siteConfig(7, "retail"), time.Minute))

	got, err := b.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	_, l2Hits, _ := b.Stats()
	assert.Equal(t, int64(1), l2Hits)

	got, err = b.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	l1Hits, _, _ := b.Stats()
	assert.Equal(t, int64(1), l1Hits)

	require.NoError(t, a.Invalidate(ctx, 7))
	assert.Equal(t, []int64{7}, inv.published)

	got, err = b.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, got)
	_, _, misses := b.Stats()
	assert.Equal(t, int64(1), misses)
}

func TestNotifier_ChannelChanged(t *testing.T) {
	c := NewInMemorySiteConfigCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 3, siteConfig(3, "retail"), 0))
	NewNotifier(c, nil).ChannelChanged(ctx, 3)

	got, _ := c.Get(ctx, 3)
	assert.Nil(t, got)
}

func TestFactory_WithoutRedis(t *testing.T) {
	f := NewFactory(config.RedisConfig{})
	ctx := context.Background()

	client, err := f.Redis(ctx)
	require.NoError(t, err)
	assert.Nil(t, client)

	sc, err := f.SiteConfigCache(ctx, time.Minute)
	require.NoError(t, err)
	defer sc.Close()
	assert.IsType(t, &InMemorySiteConfigCache{}, sc)

	store, err := f.IdempotencyStore(ctx)
	require.NoError(t, err)
	defer store.Close()
	assert.IsType(t, &InMemoryIdempotencyStore{}, store)

	assert.NoError(t, f.Close())
}

func TestFactory_UnreachableRedis(t *testing.T) {
	cfg := config.RedisConfig{Host: "127.0.0.1", Port: 1}
	ctx := context.Background()

	client, err := NewFactory(cfg).Redis(ctx)
	require.NoError(t, err)
	assert.Nil(t, client)

	_, err = NewFactory(cfg, WithInMemoryFallback(false)).Redis(ctx)
	assert.Error(t, err)
}
