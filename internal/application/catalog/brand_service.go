package catalog

import (
	"context"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/crud"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// BrandConfig describes the brands table.
func BrandConfig() crud.Config {
	return crud.Config{
		ResourceName:  "Brand",
		SortColumns:   persistence.SortColumns("id", "name", "created_at"),
		FilterColumns: persistence.SortColumns("name"),
		UniqueConstraints: []crud.Unique{
			{Fields: []string{"name"}, Message: "Brand name already exists."},
			{Fields: []string{"slug"}, Message: "Brand slug already exists."},
		},
		Dependencies: []crud.Dependency{{
			Table:        "products",
			ForeignKey:   "brand_id",
			ResourceName: "product",
			Message:      "Cannot delete brand because it has {count} product(s) associated with it.",
		}},
	}
}

// BrandService manages brands
type BrandService struct {
	*crud.Service[models.Brand]
}

// NewBrandService creates a BrandService
func NewBrandService(db *gorm.DB) *BrandService {
	return &BrandService{Service: crud.MustNew[models.Brand](db, BrandConfig(), nil)}
}

// Create creates a brand. A missing slug is derived from the name.
func (s *BrandService) Create(ctx context.Context, values map[string]any) (*models.Brand, error) {
	values = shared.NormalizeKeys(values)
	fillSlug(values)
	return s.Service.Create(ctx, values)
}

func fillSlug(values map[string]any) {
	if s, _ := values["slug"].(string); s != "" {
		return
	}
	if name, _ := values["name"].(string); name != "" {
		values["slug"] = shared.Slugify(name)
	}
}
