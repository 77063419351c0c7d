package sales

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestExtend(t *testing.T) {
	t.Run("list only", func(t *testing.T) {
		list, sale := Extend(dec("12.50"), nil, 3)
		assert.True(t, dec("37.5").Equal(list))
		assert.Nil(t, sale)
	})

	t.Run("with sale", func(t *testing.T) {
		list, sale := Extend(dec("12.50"), decPtr("10"), 2)
		assert.True(t, dec("25").Equal(list))
		require.NotNil(t, sale)
		assert.True(t, dec("20").Equal(*sale))
	})

	t.Run("zero sale is ignored", func(t *testing.T) {
		_, sale := Extend(dec("5"), decPtr("0"), 2)
		assert.Nil(t, sale)
	})
}

func TestRecalculate(t *testing.T) {
	lines := []Line{
		{Quantity: 2, ExtendedListPrice: decPtr("20"), ExtendedSalePrice: decPtr("15"), DiscountAmount: decPtr("1")},
		{Quantity: 1, ExtendedListPrice: decPtr("9.99"), DiscountAmount: decPtr("0")},
		{Quantity: 4, ExtendedListPrice: decPtr("4"), ExtendedSalePrice: decPtr("0")},
	}

	totals := Recalculate(lines)

	assert.Equal(t, "28.99", totals.BaseAmount.String())
	assert.Equal(t, "1", totals.DiscountAmount.String())
	assert.Equal(t, "27.99", totals.Amount.String())
	assert.Equal(t, 7, ItemCount(lines))
}

func TestRecalculate_Empty(t *testing.T) {
	totals := Recalculate(nil)
	assert.True(t, totals.BaseAmount.IsZero())
	assert.True(t, totals.Amount.IsZero())
}

func TestLine_UnitPriceAndTotal(t *testing.T) {
	onSale := Line{Quantity: 3, ListPrice: dec("10"), SalePrice: decPtr("8")}
	assert.Equal(t, "8", onSale.UnitPrice().String())
	assert.Equal(t, "24", onSale.LineTotal().String())

	full := Line{Quantity: 2, ListPrice: dec("10")}
	assert.Equal(t, "10", full.UnitPrice().String())
	assert.Equal(t, "20", full.LineTotal().String())
}

func TestNewOrderNumber(t *testing.T) {
	id := uuid.MustParse("1a2b3c4d-0000-4000-8000-000000000000")
	at := time.Date(2026, 10, 15, 23, 30, 0, 0, time.FixedZone("X", -3*3600))

	assert.Equal(t, "KG-20261016-1A2B3C4D", NewOrderNumber(at, id))
}
