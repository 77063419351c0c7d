package catalog

import (
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/crud"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// ProductVariantConfig describes the product_variants table.
func ProductVariantConfig() crud.Config {
	return crud.Config{
		ResourceName:  "Variant",
		DefaultSort:   "sort_order",
		SortColumns:   persistence.SortColumns("id", "sku", "price", "sort_order", "inventory_level", "created_at"),
		FilterColumns: persistence.SortColumns("sku", "price", "purchasing_disabled", "inventory_level"),
		UniqueConstraints: []crud.Unique{
			{Fields: []string{"sku"}, Message: "Variant SKU is already in use."},
		},
		Dependencies: []crud.Dependency{
			{
				Table:        "inventory_levels",
				ForeignKey:   "variant_id",
				ResourceName: "inventory level",
				Message:      "Cannot delete variant because it has {count} inventory level(s).",
			},
			{
				Table:        "price_list_records",
				ForeignKey:   "variant_id",
				ResourceName: "price list record",
				Message:      "Cannot delete variant because it has {count} price list record(s).",
			},
		},
	}
}

// ProductVariantService manages the variants of a product.
type ProductVariantService struct {
	*crud.NestedService[models.ProductVariant]
}

// NewProductVariantService creates a ProductVariantService
func NewProductVariantService(db *gorm.DB) *ProductVariantService {
	return &ProductVariantService{
		NestedService: crud.MustNewNested[models.ProductVariant](db, ProductVariantConfig(), crud.Parent{
			Table: "products", ResourceName: "Product", ForeignKey: "product_id",
		}, nil),
	}
}
