package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/crud"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CategoryConfig describes the categories table.
func CategoryConfig() crud.Config {
	return crud.Config{
		ResourceName:  "Category",
		SortColumns:   persistence.SortColumns("id", "name", "sort_order", "created_at"),
		FilterColumns: persistence.SortColumns("tree_id", "parent_id", "is_visible", "name"),
		ForeignKeys: []crud.ForeignKey{
			{Table: "category_trees", ResourceName: "Category Tree", Field: "tree_id"},
			{Table: "categories", ResourceName: "Parent Category", Field: "parent_id", Optional: true},
		},
		UniqueConstraints: []crud.Unique{{
			Fields:    []string{"tree_id", "slug"},
			Message:   "Category slug already exists in this tree.",
			Composite: true,
		}},
		Dependencies: []crud.Dependency{
			{
				Table:        "categories",
				ForeignKey:   "parent_id",
				ResourceName: "child category",
				Message:      "Cannot delete category because it has {count} child category(s).",
			},
			{
				Table:        "product_categories",
				ForeignKey:   "category_id",
				ResourceName: "product assignment",
				Message:      "Cannot delete category because it has {count} product(s) assigned.",
			},
		},
	}
}

// CategoryService manages categories and keeps each category's materialised
// path (path_ids, path_names, depth) in step with its position in the tree.
type CategoryService struct {
	*crud.Service[models.Category]
}

// NewCategoryService creates a CategoryService
func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{Service: crud.MustNew[models.Category](db, CategoryConfig(), categoryHooks{})}
}

// Create creates a category. A missing slug is derived from the name.
func (s *CategoryService) Create(ctx context.Context, values map[string]any) (*models.Category, error) {
	values = shared.NormalizeKeys(values)
	fillSlug(values)
	return s.Service.Create(ctx, values)
}

// ListVisible returns the visible categories of trees bound to channelID or
// to no channel, ordered by sort order then name.
func (s *CategoryService) ListVisible(ctx context.Context, channelID int64) ([]models.Category, error) {
	var rows []models.Category
	err := s.visible(ctx, channelID).
		Order("categories.sort_order").
		Order("categories.name").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list visible categories: %w", err)
	}
	return rows, nil
}

// GetBySlug returns the visible category with slug on channelID, or nil.
// A tree bound to the channel wins over an unbound one.
func (s *CategoryService) GetBySlug(ctx context.Context, slug string, channelID int64) (*models.Category, error) {
	var row models.Category
	err := s.visible(ctx, channelID).
		Where("categories.slug = ?", slug).
		Order("CASE WHEN category_trees.channel_id IS NULL THEN 1 ELSE 0 END").
		Order("categories.id").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category by slug %q: %w", slug, err)
	}
	return &row, nil
}

func (s *CategoryService) visible(ctx context.Context, channelID int64) *gorm.DB {
	return s.DB(ctx).Model(&models.Category{}).
		Select("categories.*").
		Joins("JOIN category_trees ON category_trees.id = categories.tree_id").
		Where("categories.is_visible = ?", true).
		Where("category_trees.channel_id = ? OR category_trees.channel_id IS NULL", channelID)
}

// GetChildren returns the visible direct children of parentID.
func (s *CategoryService) GetChildren(ctx context.Context, parentID int64) ([]models.Category, error) {
	var rows []models.Category
	err := s.DB(ctx).
		Where("parent_id = ? AND is_visible = ?", parentID, true).
		Order("sort_order").
		Order("name").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list children of category %d: %w", parentID, err)
	}
	return rows, nil
}

// GetBreadcrumbs returns the categories named by pathIDs in path order.
// Missing ids are skipped.
func (s *CategoryService) GetBreadcrumbs(ctx context.Context, pathIDs []int64) ([]models.Category, error) {
	if len(pathIDs) == 0 {
		return []models.Category{}, nil
	}
	var rows []models.Category
	if err := s.DB(ctx).Where("id IN ?", pathIDs).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load breadcrumbs: %w", err)
	}
	byID := make(map[int64]models.Category, len(rows))
	for _, c := range rows {
		byID[c.ID] = c
	}
	out := make([]models.Category, 0, len(pathIDs))
	for _, id := range pathIDs {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// BrandSummary identifies a brand in category statistics.
type BrandSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CategoryStats summarises the live products assigned to a category.
type CategoryStats struct {
	ProductCount int64           `json:"product_count"`
	MinPrice     decimal.Decimal `json:"min_price"`
	MaxPrice     decimal.Decimal `json:"max_price"`
	Brands       []BrandSummary  `json:"brands"`
}

// GetCategoryStats counts the visible, non-deleted products assigned to
// categoryID and reports their price range and brands.
func (s *CategoryService) GetCategoryStats(ctx context.Context, categoryID int64) (*CategoryStats, error) {
	products := func() *gorm.DB {
		return s.DB(ctx).Table("products").
			Joins("JOIN product_categories ON product_categories.product_id = products.id").
			Where("product_categories.category_id = ?", categoryID).
			Where("products.is_visible = ? AND products.is_deleted = ?", true, false)
	}

	var agg struct {
		ProductCount int64
		MinPrice     decimal.Decimal
		MaxPrice     decimal.Decimal
	}
	err := products().
		Select("COUNT(DISTINCT products.id) AS product_count, " +
			"COALESCE(MIN(products.price), 0) AS min_price, " +
			"COALESCE(MAX(products.price), 0) AS max_price").
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("category %d stats: %w", categoryID, err)
	}

	brands := make([]BrandSummary, 0)
	err = products().
		Joins("JOIN brands ON brands.id = products.brand_id").
		Distinct("brands.id", "brands.name", "brands.slug").
		Order("brands.name").
		Scan(&brands).Error
	if err != nil {
		return nil, fmt.Errorf("category %d brands: %w", categoryID, err)
	}

	return &CategoryStats{
		ProductCount: agg.ProductCount,
		MinPrice:     agg.MinPrice,
		MaxPrice:     agg.MaxPrice,
		Brands:       brands,
	}, nil
}

var errMoveUnderSelf = shared.NewValidation("One or more fields are invalid.", map[string]string{
	"parent_id": "A category cannot be moved under itself or one of its descendants.",
})

type categoryHooks struct {
	crud.NoHooks[models.Category]
}

// BeforeCreate derives the path from the parent. The new id is appended
// once it is known, in AfterCreate.
func (categoryHooks) BeforeCreate(ctx context.Context, tx *gorm.DB, values map[string]any) error {
	name, _ := values["name"].(string)
	treeID, _ := crud.ID(values, "tree_id")
	parentID, hasParent := crud.ID(values, "parent_id")

	p := categoryPath{names: pq.StringArray{name}}
	if hasParent {
		parent, err := loadParent(ctx, tx, parentID, treeID)
		if err != nil {
			return err
		}
		p = parent.child(name)
	}
	p.apply(values, 0)
	return nil
}

func (categoryHooks) AfterCreate(ctx context.Context, tx *gorm.DB, created *models.Category) error {
	created.PathIDs = append(slices.Clone(created.PathIDs), created.ID)
	return tx.WithContext(ctx).Model(&models.Category{}).
		Where("id = ?", created.ID).
		Update("path_ids", created.PathIDs).Error
}

func (categoryHooks) BeforeUpdate(ctx context.Context, tx *gorm.DB, values map[string]any, existing *models.Category) error {
	_, parentSet := values["parent_id"]
	_, nameSet := values["name"]
	_, treeSet := values["tree_id"]
	if !parentSet && !nameSet && !treeSet {
		return nil
	}

	name := existing.Name
	if n, ok := values["name"].(string); ok {
		name = n
	}
	treeID := existing.TreeID
	if id, ok := crud.ID(values, "tree_id"); ok {
		treeID = id
	}
	var parentID int64
	hasParent := existing.ParentID != nil
	if hasParent {
		parentID = *existing.ParentID
	}
	if parentSet {
		parentID, hasParent = crud.ID(values, "parent_id")
	}

	p := categoryPath{names: pq.StringArray{name}}
	if hasParent {
		if parentID == existing.ID {
			return errMoveUnderSelf
		}
		parent, err := loadParent(ctx, tx, parentID, treeID)
		if err != nil {
			return err
		}
		if slices.Contains(parent.ids, existing.ID) {
			return errMoveUnderSelf
		}
		p = parent.child(name)
	}
	p.apply(values, existing.ID)
	return nil
}

// AfterUpdate rewrites the paths of every descendant when the category's own
// path changed.
func (categoryHooks) AfterUpdate(ctx context.Context, tx *gorm.DB, updated, previous *models.Category) error {
	if slices.Equal(updated.PathIDs, previous.PathIDs) &&
		slices.Equal(updated.PathNames, previous.PathNames) &&
		updated.TreeID == previous.TreeID {
		return nil
	}

	queue := []*models.Category{updated}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]

		var children []models.Category
		if err := tx.WithContext(ctx).Where("parent_id = ?", parent.ID).Find(&children).Error; err != nil {
			return fmt.Errorf("load children of category %d: %w", parent.ID, err)
		}
		for i := range children {
			c := &children[i]
			c.TreeID = parent.TreeID
			c.Depth = parent.Depth + 1
			c.PathIDs = append(slices.Clone(parent.PathIDs), c.ID)
			c.PathNames = append(slices.Clone(parent.PathNames), c.Name)
			err := tx.WithContext(ctx).Model(&models.Category{}).Where("id = ?", c.ID).Updates(map[string]any{
				"tree_id":    c.TreeID,
				"depth":      c.Depth,
				"path_ids":   c.PathIDs,
				"path_names": c.PathNames,
			}).Error
			if err != nil {
				return fmt.Errorf("rewrite path of category %d: %w", c.ID, err)
			}
			queue = append(queue, c)
		}
	}
	return nil
}

// categoryPath is a materialised category path.
type categoryPath struct {
	ids   pq.Int64Array
	names pq.StringArray
	depth int
}

func (p categoryPath) child(name string) categoryPath {
	return categoryPath{
		ids:   slices.Clone(p.ids),
		names: append(slices.Clone(p.names), name),
		depth: p.depth + 1,
	}
}

// apply stores p in values, appending selfID when it is known.
func (p categoryPath) apply(values map[string]any, selfID int64) {
	ids := p.ids
	if ids == nil {
		ids = pq.Int64Array{}
	}
	if selfID != 0 {
		ids = append(slices.Clone(ids), selfID)
	}
	values["path_ids"] = ids
	values["path_names"] = p.names
	values["depth"] = p.depth
}

func loadParent(ctx context.Context, tx *gorm.DB, parentID, treeID int64) (categoryPath, error) {
	var parent models.Category
	if err := tx.WithContext(ctx).Take(&parent, parentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return categoryPath{}, shared.NewNotFound("Parent Category", parentID)
		}
		return categoryPath{}, fmt.Errorf("load parent category %d: %w", parentID, err)
	}
	if treeID != 0 && parent.TreeID != treeID {
		return categoryPath{}, shared.NewValidation("One or more fields are invalid.", map[string]string{
			"parent_id": "Parent category must belong to the same tree.",
		})
	}
	return categoryPath{ids: parent.PathIDs, names: parent.PathNames, depth: parent.Depth}, nil
}
