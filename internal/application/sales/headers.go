package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/crud"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultCurrency is used when a channel has no default currency.
const DefaultCurrency = "USD"

// applyHeaderDefaults fills the columns a new cart or quote starts with.
// Amount columns start at zero, expiry is lifetime from now and the currency
// comes from the channel.
func applyHeaderDefaults(ctx context.Context, tx *gorm.DB, values map[string]any, status string, amounts []string, now time.Time) error {
	if s, _ := values["status"].(string); s == "" {
		values["status"] = status
	}
	for _, col := range amounts {
		if d, _, _ := crud.Money(values, col); d == nil {
			zero := decimal.Zero
			values[col] = zero
		}
	}
	if values["expires_at"] == nil {
		values["expires_at"] = now.Add(DefaultLifetime)
	}
	if c, _ := values["currency_code"].(string); c == "" {
		channelID, _ := crud.ID(values, "channel_id")
		code, err := channelCurrency(ctx, tx, channelID)
		if err != nil {
			return err
		}
		values["currency_code"] = code
	}
	return nil
}

func applyCodeDefaults(values map[string]any, columns ...string) {
	for _, col := range columns {
		if values[col] == nil {
			values[col] = pq.StringArray{}
		}
	}
}

func channelCurrency(ctx context.Context, tx *gorm.DB, channelID int64) (string, error) {
	var row struct{ DefaultCurrencyCode *string }
	err := tx.WithContext(ctx).Table("channels").
		Select("default_currency_code").
		Where("id = ?", channelID).
		Take(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("load channel %d currency: %w", channelID, err)
	}
	if row.DefaultCurrencyCode == nil || strings.TrimSpace(*row.DefaultCurrencyCode) == "" {
		return DefaultCurrency, nil
	}
	return *row.DefaultCurrencyCode, nil
}

// takeByUUID loads the row of T whose uuid is raw, or nil when raw is not a
// uuid or no row matches.
func takeByUUID[T any](db *gorm.DB, raw string, scopes ...func(*gorm.DB) *gorm.DB) (*T, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, nil
	}
	row := new(T)
	err = db.Scopes(scopes...).Where("uuid = ?", id).Take(row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

func notFound(resource string, id int64) error {
	return shared.NewNotFound(resource, id)
}
