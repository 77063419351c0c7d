package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*RateLimiter, *time.Time) {
	t.Helper()
	rl := NewRateLimiter(limit, window)
	t.Cleanup(rl.Stop)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiter_Take(t *testing.T) {
	rl, now := newTestLimiter(t, 2, time.Minute)
	ctx := context.Background()

	d, err := rl.Take(ctx, "a")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)

	d, _ = rl.Take(ctx, "a")
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	*now = now.Add(20 * time.Second)
	d, _ = rl.Take(ctx, "a")
	assert.False(t, d.Allowed)
	assert.Equal(t, 40*time.Second, d.RetryAfter)

	d, _ = rl.Take(ctx, "b")
	assert.True(t, d.Allowed, "keys are counted separately")

	*now = now.Add(40 * time.Second)
	d, _ = rl.Take(ctx, "a")
	assert.True(t, d.Allowed, "a new window starts")
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, time.Second)
	rl.Stop()
	rl.Stop()
}

func TestRateLimit_Middleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, 30*time.Second)
	r := newEngine(RequestID(), RateLimit(rl))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = serve(r, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	body := decodeError(t, w)
	assert.Equal(t, float64(30), body["retry_after"])
	assert.Equal(t, "Rate limit exceeded. Retry after 30 seconds.", body["detail"])
}

type failingLimiter struct{}

func (failingLimiter) Take(context.Context, string) (Decision, error) {
	return Decision{}, errors.New("redis down")
}
func (failingLimiter) Limit() int { return 1 }

func TestRateLimitByKey_FailsOpen(t *testing.T) {
	r := newEngine(RateLimitByKey(failingLimiter{}, func(c *gin.Context) string { return "k" }))
	w := serve(r, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
