package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/application/sales"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"github.com/cmlibra71/keenan-group-channels/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingExpirer struct {
	calls atomic.Int32
	n     int64
	err   error
	seen  time.Time
}

func (e *countingExpirer) ExpireStale(_ context.Context, now time.Time) (int64, error) {
	e.calls.Add(1)
	e.seen = now
	return e.n, e.err
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestNew_ValidatesConfig(t *testing.T) {
	_, err := New(Config{Schedule: "not a schedule", JobTimeout: time.Second}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Config{Schedule: "0 * * * * *"}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	e := &countingExpirer{}
	_, err = New(DefaultConfig(), nil, []Task{ExpiryTask("a", e), ExpiryTask("a", e)})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "0 */15 * * * *", cfg.Schedule)
	assert.Equal(t, 5*time.Minute, cfg.JobTimeout)
}

func TestScheduler_RunNow(t *testing.T) {
	carts := &countingExpirer{n: 3}
	quotes := &countingExpirer{err: assert.AnError}

	s, err := New(DefaultConfig(), zap.NewNop(), SalesExpiryTasks(carts, quotes), WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	n, err := s.RunNow(context.Background(), JobExpireCarts)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, fixedNow, carts.seen)

	_, err = s.RunNow(context.Background(), JobExpireQuotes)
	assert.ErrorIs(t, err, assert.AnError)

	_, err = s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	states := s.States()
	require.Len(t, states, 2)
	assert.Equal(t, JobExpireCarts, states[0].Name)
	assert.Equal(t, JobStatusSuccess, states[0].Status)
	assert.Equal(t, int64(3), states[0].LastChanged)
	assert.Equal(t, 1, states[0].Runs)
	assert.Equal(t, JobStatusFailed, states[1].Status)
	assert.Equal(t, assert.AnError.Error(), states[1].LastError)
}

func TestScheduler_CronRunsEveryJob(t *testing.T) {
	carts := &countingExpirer{}
	quotes := &countingExpirer{err: assert.AnError}

	s, err := New(Config{Enabled: true, Schedule: "* * * * * *", JobTimeout: time.Second}, nil, SalesExpiryTasks(carts, quotes))
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	require.NoError(t, s.Start(context.Background()), "second start is a no-op")

	assert.Eventually(t, func() bool {
		return carts.calls.Load() > 0 && quotes.calls.Load() > 0
	}, 3*time.Second, 50*time.Millisecond, "a failing job must not block the others")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop(ctx))
}

func TestScheduler_DisabledDoesNotStart(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	s, err := New(cfg, nil, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestSalesExpiryTasks_ExpireStaleRows(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ch := testutil.SeedChannel(t, db, "Retail")
	past := fixedNow.Add(-time.Hour)
	future := fixedNow.Add(time.Hour)

	testutil.Seed(t, db, &models.Cart{ChannelID: ch.ID, Status: models.CartStatusActive, ExpiresAt: &past})
	testutil.Seed(t, db, &models.Cart{ChannelID: ch.ID, Status: models.CartStatusActive, ExpiresAt: &future})
	testutil.Seed(t, db, &models.Quote{ChannelID: ch.ID, Status: models.QuoteStatusDraft, ExpiresAt: &past})

	s, err := New(DefaultConfig(), nil,
		SalesExpiryTasks(sales.NewCartService(db), sales.NewQuoteService(db)),
		WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	n, err := s.RunNow(context.Background(), JobExpireCarts)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.RunNow(context.Background(), JobExpireQuotes)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
