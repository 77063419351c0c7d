package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers request keys so a retried request is not
// applied twice.
type IdempotencyStore interface {
	// MarkProcessed records key for ttl. It returns false when key was
	// already recorded and has not expired.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether key is recorded.
	IsProcessed(ctx context.Context, key string) (bool, error)

	Close() error
}

// DefaultIdempotencyTTL is how long a checkout key is remembered.
const DefaultIdempotencyTTL = 24 * time.Hour
