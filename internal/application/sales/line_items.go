// Package sales manages carts, quotes and orders and their line items.
package sales

import (
	"context"
	"fmt"
	"time"

	domain "github.com/cmlibra71/keenan-group-channels/internal/domain/sales"
	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/crud"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultLifetime is how long a new cart or quote stays open.
const DefaultLifetime = 30 * 24 * time.Hour

// lineConfig describes cart_items or quote_items.
func lineConfig(resource, headerKey, duplicate string) crud.Config {
	return crud.Config{
		ResourceName:  resource,
		SortColumns:   persistence.SortColumns("id", "created_at", "updated_at"),
		FilterColumns: persistence.SortColumns("product_id", "variant_id"),
		ForeignKeys: []crud.ForeignKey{
			{Table: "products", ResourceName: "Product", Field: "product_id"},
			{Table: "product_variants", ResourceName: "Variant", Field: "variant_id", Optional: true},
		},
		UniqueConstraints: []crud.Unique{{
			Fields:    []string{headerKey, "product_id", "variant_id"},
			Message:   duplicate,
			Composite: true,
		}},
	}
}

// header names the table a line belongs to and the column holding its total.
type header struct {
	table       string
	foreignKey  string
	totalColumn string
}

// lineHooks price line items and keep the header totals current. They serve
// both cart and quote items.
type lineHooks[T any] struct {
	crud.NoHooks[T]
	header header
	line   func(*T) *models.LineItem
	parent func(*T) int64
	now    func() time.Time
}

func (h *lineHooks[T]) BeforeCreate(_ context.Context, _ *gorm.DB, values map[string]any) error {
	qty := crud.Int(values, "quantity", 1)
	if qty < 1 {
		qty = 1
	}
	list, _, err := crud.Money(values, "list_price")
	if err != nil {
		return invalidField("list_price")
	}
	if list == nil {
		zero := decimal.Zero
		list = &zero
	}
	sale, _, err := crud.Money(values, "sale_price")
	if err != nil {
		return invalidField("sale_price")
	}

	extList, extSale := domain.Extend(*list, sale, qty)
	values["quantity"] = qty
	values["list_price"] = *list
	values["extended_list_price"] = &extList
	values["extended_sale_price"] = extSale
	if d, _, _ := crud.Money(values, "discount_amount"); d == nil {
		zero := decimal.Zero
		values["discount_amount"] = &zero
	}
	for _, key := range []string{"applied_coupons", "modifier_selections"} {
		if values[key] == nil {
			values[key] = datatypes.JSON("[]")
		}
	}
	return nil
}

func (h *lineHooks[T]) AfterCreate(ctx context.Context, tx *gorm.DB, created *T) error {
	return h.recalculate(ctx, tx, h.parent(created))
}

// BeforeUpdate reprices the line from the incoming values merged over the
// stored ones. An explicit null sale price clears the extended sale price.
func (h *lineHooks[T]) BeforeUpdate(_ context.Context, _ *gorm.DB, values map[string]any, existing *T) error {
	cur := h.line(existing)

	qty := crud.Int(values, "quantity", cur.Quantity)
	list := cur.ListPrice
	if v, present, err := crud.Money(values, "list_price"); err != nil {
		return invalidField("list_price")
	} else if present && v != nil {
		list = *v
	}
	sale := cur.SalePrice
	v, present, err := crud.Money(values, "sale_price")
	if err != nil {
		return invalidField("sale_price")
	}
	if present {
		sale = v
	}

	extList, extSale := domain.Extend(list, sale, qty)
	values["extended_list_price"] = &extList
	if extSale != nil || present {
		values["extended_sale_price"] = extSale
	}
	return nil
}

func (h *lineHooks[T]) AfterUpdate(ctx context.Context, tx *gorm.DB, updated, _ *T) error {
	return h.recalculate(ctx, tx, h.parent(updated))
}

func (h *lineHooks[T]) AfterDelete(ctx context.Context, tx *gorm.DB, deleted *T) error {
	return h.recalculate(ctx, tx, h.parent(deleted))
}

// recalculate rewrites the header totals from its current lines.
func (h *lineHooks[T]) recalculate(ctx context.Context, tx *gorm.DB, headerID int64) error {
	var rows []T
	if err := tx.WithContext(ctx).Where(h.header.foreignKey+" = ?", headerID).Find(&rows).Error; err != nil {
		return fmt.Errorf("load %s lines: %w", h.header.table, err)
	}
	lines := make([]domain.Line, len(rows))
	for i := range rows {
		lines[i] = h.line(&rows[i]).Line()
	}
	totals := domain.Recalculate(lines)

	err := tx.WithContext(ctx).Table(h.header.table).Where("id = ?", headerID).Updates(map[string]any{
		"base_amount":        totals.BaseAmount,
		"discount_amount":    totals.DiscountAmount,
		h.header.totalColumn: totals.Amount,
		"updated_at":         h.now(),
	}).Error
	if err != nil {
		return fmt.Errorf("update %s %d totals: %w", h.header.table, headerID, err)
	}
	return nil
}

func invalidField(field string) error {
	return shared.NewValidation("One or more fields are invalid.", map[string]string{
		field: "Must be a decimal number.",
	})
}

// withProduct joins the product columns shown next to each line.
func withProduct(table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Select(table + ".*, products.name AS product_name, products.sku AS product_sku, products.url_path AS product_url_path").
			Joins("LEFT JOIN products ON products.id = " + table + ".product_id").
			Order(table + ".id")
	}
}
