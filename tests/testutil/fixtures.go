package testutil

import (
	"testing"

	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Seed inserts row directly, bypassing services, and returns it.
func Seed[T any](t *testing.T, db *gorm.DB, row *T) *T {
	t.Helper()
	require.NoError(t, db.Create(row).Error, "Failed to seed %T", row)
	return row
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// Money parses a decimal literal and fails the test on error.
func Money(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// SeedChannel inserts an active storefront channel.
func SeedChannel(t *testing.T, db *gorm.DB, name string) *models.Channel {
	t.Helper()
	return Seed(t, db, &models.Channel{
		Name:                name,
		Type:                "storefront",
		Status:              "active",
		DefaultCurrencyCode: Ptr("USD"),
	})
}

// SeedProduct inserts a visible product with the given price.
func SeedProduct(t *testing.T, db *gorm.DB, name, price string) *models.Product {
	t.Helper()
	return Seed(t, db, &models.Product{
		Name:    name,
		Type:    "physical",
		Price:   Money(t, price),
		URLPath: Ptr("/" + name),
	})
}
