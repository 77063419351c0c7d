package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// DefaultInvalidationChannel is the Pub/Sub channel carrying the ids of
	// channels whose site configuration changed.
	DefaultInvalidationChannel = "storefront:site:invalidate"
	defaultCloseTimeout        = 5 * time.Second
)

// Invalidator broadcasts site config invalidations between processes.
type Invalidator interface {
	Publish(ctx context.Context, channelID int64) error
	Subscribe(ctx context.Context, fn func(channelID int64)) error
	Close() error
}

// RedisInvalidator implements Invalidator with Redis Pub/Sub. The payload is
// the decimal channel id.
type RedisInvalidator struct {
	client    redis.UniversalClient
	channel   string
	logger    *zap.Logger
	cancelFn  context.CancelFunc
	doneCh    chan struct{}
	doneOnce  sync.Once
	mu        sync.Mutex
	isRunning bool
}

// InvalidatorOption configures a RedisInvalidator.
type InvalidatorOption func(*RedisInvalidator)

// WithInvalidationChannel sets the Pub/Sub channel name
func WithInvalidationChannel(channel string) InvalidatorOption {
	return func(i *RedisInvalidator) {
		i.channel = channel
	}
}

// WithInvalidatorLogger sets the logger for the invalidator
func WithInvalidatorLogger(logger *zap.Logger) InvalidatorOption {
	return func(i *RedisInvalidator) {
		i.logger = logger
	}
}

// NewRedisInvalidator creates an invalidator over client. The caller owns
// the client.
func NewRedisInvalidator(client redis.UniversalClient, opts ...InvalidatorOption) *RedisInvalidator {
	i := &RedisInvalidator{
		client:  client,
		channel: DefaultInvalidationChannel,
		logger:  zap.NewNop(),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Publish announces that channelID changed.
func (i *RedisInvalidator) Publish(ctx context.Context, channelID int64) error {
	if err := i.client.Publish(ctx, i.channel, strconv.FormatInt(channelID, 10)).Err(); err != nil {
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}
	return nil
}

// Subscribe calls fn for every invalidation until ctx is done or Close is
// called. It blocks.
func (i *RedisInvalidator) Subscribe(ctx context.Context, fn func(channelID int64)) error {
	i.mu.Lock()
	if i.isRunning {
		i.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	i.isRunning = true
	subCtx, cancel := context.WithCancel(ctx)
	i.cancelFn = cancel
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		i.isRunning = false
		i.mu.Unlock()
		i.doneOnce.Do(func() { close(i.doneCh) })
	}()

	pubsub := i.client.Subscribe(subCtx, i.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}
	i.logger.Info("Subscribed to site config invalidations", zap.String("channel", i.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				i.logger.Warn("Site config invalidation channel closed")
				return nil
			}
			id, err := strconv.ParseInt(msg.Payload, 10, 64)
			if err != nil {
				i.logger.Error("Ignoring malformed invalidation",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}
			fn(id)
		}
	}
}

// Close stops a running subscription.
func (i *RedisInvalidator) Close() error {
	i.mu.Lock()
	cancelFn := i.cancelFn
	i.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-i.doneCh:
		case <-time.After(defaultCloseTimeout):
			i.logger.Warn("Timeout waiting for subscription to stop")
		}
	}
	return nil
}

var _ Invalidator = (*RedisInvalidator)(nil)
