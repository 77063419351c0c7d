package storefront

import (
	"context"

	"github.com/shopspring/decimal"
)

// LineInput names the product, and optionally the variant, being added to a
// cart or quote.
type LineInput struct {
	ProductID int64  `json:"product_id" binding:"required,gt=0"`
	VariantID *int64 `json:"variant_id"`
}

// price resolves the list and sale price of a line. A variant's own prices
// override the product's when set.
func (s *Storefront) price(ctx context.Context, in LineInput) (decimal.Decimal, *decimal.Decimal, error) {
	product, err := s.svc.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		if isNotFound(err) {
			return decimal.Zero, nil, errProductNotFound
		}
		return decimal.Zero, nil, err
	}
	list, sale := product.Price, product.SalePrice

	if in.VariantID != nil {
		variant, err := s.svc.Variants.GetByIDForParent(ctx, in.ProductID, *in.VariantID)
		if err != nil {
			return decimal.Zero, nil, err
		}
		if variant.Price != nil {
			list = *variant.Price
		}
		if variant.SalePrice != nil && !variant.SalePrice.IsZero() {
			sale = variant.SalePrice
		}
	}
	return list, sale, nil
}

// lineValues is the create payload for a new line of quantity one.
func lineValues(in LineInput, list decimal.Decimal, sale *decimal.Decimal) map[string]any {
	return map[string]any{
		"product_id": in.ProductID,
		"variant_id": in.VariantID,
		"quantity":   1,
		"list_price": list,
		"sale_price": sale,
	}
}
