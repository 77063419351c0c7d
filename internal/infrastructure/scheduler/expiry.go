package scheduler

import (
	"context"
	"time"
)

// Expirer marks records whose expiry is before now as expired.
type Expirer interface {
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type expiryTask struct {
	name    string
	expirer Expirer
}

// ExpiryTask wraps an Expirer as a named Task.
func ExpiryTask(name string, e Expirer) Task {
	return &expiryTask{name: name, expirer: e}
}

func (t *expiryTask) Name() string { return t.name }

func (t *expiryTask) Run(ctx context.Context, now time.Time) (int64, error) {
	return t.expirer.ExpireStale(ctx, now)
}

// Job names for the sales expiry sweeps.
const (
	JobExpireCarts  = "expire_carts"
	JobExpireQuotes = "expire_quotes"
)

// SalesExpiryTasks returns the cart and quote expiry sweeps.
func SalesExpiryTasks(carts, quotes Expirer) []Task {
	return []Task{
		ExpiryTask(JobExpireCarts, carts),
		ExpiryTask(JobExpireQuotes, quotes),
	}
}
