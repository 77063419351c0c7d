// Package sales holds the arithmetic shared by carts, quotes and orders.
// Nothing here touches the database.
package sales

import (
	"github.com/shopspring/decimal"
)

// Line is the priced part of a cart or quote line.
type Line struct {
	Quantity          int
	ListPrice         decimal.Decimal
	SalePrice         *decimal.Decimal
	ExtendedListPrice *decimal.Decimal
	ExtendedSalePrice *decimal.Decimal
	DiscountAmount    *decimal.Decimal
}

// Totals are the header amounts derived from a set of lines.
type Totals struct {
	BaseAmount     decimal.Decimal
	DiscountAmount decimal.Decimal
	Amount         decimal.Decimal
}

// Extend returns list*qty and, when a sale price is set, sale*qty.
// A zero sale price counts as no sale price.
func Extend(list decimal.Decimal, sale *decimal.Decimal, quantity int) (decimal.Decimal, *decimal.Decimal) {
	qty := decimal.NewFromInt(int64(quantity))
	extList := list.Mul(qty)
	if sale == nil || sale.IsZero() {
		return extList, nil
	}
	extSale := sale.Mul(qty)
	return extList, &extSale
}

// Effective is what a line contributes before discounts: the extended sale
// price when there is one, otherwise the extended list price.
func (l Line) Effective() decimal.Decimal {
	if l.ExtendedSalePrice != nil && !l.ExtendedSalePrice.IsZero() {
		return *l.ExtendedSalePrice
	}
	if l.ExtendedListPrice != nil {
		return *l.ExtendedListPrice
	}
	return decimal.Zero
}

// UnitPrice is the price charged per unit: sale when set, otherwise list.
func (l Line) UnitPrice() decimal.Decimal {
	if l.SalePrice != nil && !l.SalePrice.IsZero() {
		return *l.SalePrice
	}
	return l.ListPrice
}

// LineTotal is UnitPrice * Quantity.
func (l Line) LineTotal() decimal.Decimal {
	return l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Recalculate sums base and discount over lines. Amount is base minus discount.
func Recalculate(lines []Line) Totals {
	base := decimal.Zero
	discount := decimal.Zero
	for _, l := range lines {
		base = base.Add(l.Effective())
		if l.DiscountAmount != nil {
			discount = discount.Add(*l.DiscountAmount)
		}
	}
	return Totals{
		BaseAmount:     base,
		DiscountAmount: discount,
		Amount:         base.Sub(discount),
	}
}

// ItemCount is the total quantity across lines.
func ItemCount(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}
