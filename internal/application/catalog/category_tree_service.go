package catalog

import (
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/crud"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// CategoryTreeConfig describes the category_trees table.
func CategoryTreeConfig() crud.Config {
	return crud.Config{
		ResourceName:  "Category Tree",
		SortColumns:   persistence.SortColumns("id", "name", "created_at"),
		FilterColumns: persistence.SortColumns("name", "channel_id"),
		ForeignKeys: []crud.ForeignKey{
			{Table: "channels", ResourceName: "Channel", Field: "channel_id", Optional: true},
		},
		Dependencies: []crud.Dependency{{
			Table:        "categories",
			ForeignKey:   "tree_id",
			ResourceName: "category",
			Message:      "Cannot delete category tree because it has {count} category(s).",
		}},
		Includes: []crud.Include{{
			Name:        "categories",
			Association: "Categories",
			Scope:       func(db *gorm.DB) *gorm.DB { return db.Order("sort_order").Order("name") },
		}},
	}
}

// CategoryTreeService manages category trees
type CategoryTreeService struct {
	*crud.Service[models.CategoryTree]
}

// NewCategoryTreeService creates a CategoryTreeService
func NewCategoryTreeService(db *gorm.DB) *CategoryTreeService {
	return &CategoryTreeService{Service: crud.MustNew[models.CategoryTree](db, CategoryTreeConfig(), nil)}
}
