package middleware

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Decision is the outcome of taking one request from a limiter.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts requests per key in fixed windows.
type Limiter interface {
	Take(ctx context.Context, key string) (Decision, error)
	Limit() int
}

// RateLimiter is an in-memory fixed-window limiter for a single process.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   int
	window  time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type client struct {
	count     int
	lastReset time.Time
}

// NewRateLimiter creates a RateLimiter and starts its cleanup loop. Call
// Stop to end the loop.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*client),
		limit:   limit,
		window:  window,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.cleanup(window * 2)
	return rl
}

func (rl *RateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, c := range rl.clients {
				if now.Sub(c.lastReset) > rl.window*2 {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Stop ends the cleanup loop.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// Limit returns the number of requests allowed per window.
func (rl *RateLimiter) Limit() int { return rl.limit }

// Take counts one request for key.
func (rl *RateLimiter) Take(_ context.Context, key string) (Decision, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	c, ok := rl.clients[key]
	if !ok || now.Sub(c.lastReset) >= rl.window {
		c = &client{lastReset: now}
		rl.clients[key] = c
	}
	if c.count >= rl.limit {
		return Decision{RetryAfter: c.lastReset.Add(rl.window).Sub(now)}, nil
	}
	c.count++
	return Decision{Allowed: true, Remaining: rl.limit - c.count}, nil
}

// RedisRateLimiter shares fixed-window counters between processes.
type RedisRateLimiter struct {
	client redis.UniversalClient
	prefix string
	limit  int
	window time.Duration
}

// NewRedisRateLimiter creates a RedisRateLimiter. Keys are stored under
// prefix, "ratelimit:" when empty.
func NewRedisRateLimiter(client redis.UniversalClient, prefix string, limit int, window time.Duration) *RedisRateLimiter {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RedisRateLimiter{client: client, prefix: prefix, limit: limit, window: window}
}

// Limit returns the number of requests allowed per window.
func (l *RedisRateLimiter) Limit() int { return l.limit }

// Take counts one request for key. The window starts with the first request.
func (l *RedisRateLimiter) Take(ctx context.Context, key string) (Decision, error) {
	k := l.prefix + key
	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit incr: %w", err)
	}
	ttl, err := l.client.PTTL(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit ttl: %w", err)
	}
	if count == 1 || ttl < 0 {
		if err := l.client.PExpire(ctx, k, l.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("rate limit expire: %w", err)
		}
		ttl = l.window
	}
	if count > int64(l.limit) {
		return Decision{RetryAfter: ttl}, nil
	}
	return Decision{Allowed: true, Remaining: l.limit - int(count)}, nil
}

// RateLimit limits requests per client IP.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string { return c.ClientIP() })
}

// RateLimitByKey limits requests per keyFunc(c). When the limiter itself
// fails the request is let through.
func RateLimitByKey(limiter Limiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := limiter.Take(c.Request.Context(), keyFunc(c))
		if err != nil {
			logger.L(c.Request.Context()).Warn("Rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			RespondError(c, shared.NewRateLimited(int(math.Ceil(d.RetryAfter.Seconds()))))
			return
		}
		c.Next()
	}
}
