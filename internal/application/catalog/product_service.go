package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/crud"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// Storefront product listing defaults
const (
	DefaultStorefrontLimit = 20
)

func bySortOrder(db *gorm.DB) *gorm.DB { return db.Order("sort_order").Order("id") }

// ProductConfig describes the products table. Products are soft deleted.
func ProductConfig() crud.Config {
	return crud.Config{
		ResourceName: "Product",
		SortColumns: persistence.SortColumns(
			"id", "name", "price", "sku", "inventory_level", "created_at", "updated_at",
		),
		FilterColumns: persistence.SortColumns(
			"id", "name", "sku", "type", "brand_id", "is_visible", "is_featured", "price", "availability",
		),
		SoftDelete: &crud.SoftDelete{Column: "is_deleted", DeletedValue: true, DeletedAtColumn: "deleted_at"},
		ForeignKeys: []crud.ForeignKey{
			{Table: "brands", ResourceName: "Brand", Field: "brand_id", Optional: true},
		},
		UniqueConstraints: []crud.Unique{
			{Fields: []string{"sku"}, Message: "Product SKU is already in use."},
		},
		Includes: []crud.Include{
			{Name: "images", Association: "Images", Scope: bySortOrder},
			{Name: "variants", Association: "Variants", Scope: bySortOrder},
		},
	}
}

// ProductService manages products and answers the storefront catalog queries.
type ProductService struct {
	*crud.Service[models.Product]
}

// NewProductService creates a ProductService
func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{Service: crud.MustNew[models.Product](db, ProductConfig(), nil)}
}

// StorefrontQuery filters a storefront product listing.
type StorefrontQuery struct {
	Page       int
	Limit      int
	CategoryID int64
	Featured   bool
	OnSale     bool
	Search     string
}

// StorefrontProduct is a product with its thumbnail image, if any.
type StorefrontProduct struct {
	models.Product
	ThumbnailImage *models.ProductImage `json:"thumbnail_image"`
}

// StorefrontPage is one page of a storefront listing.
type StorefrontPage struct {
	Products []StorefrontProduct `json:"products"`
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	Limit    int                 `json:"limit"`
}

// ListForChannel lists the products visible on channelID, ordered by name.
// A product is listed when it is visible, not deleted and has a visible
// assignment to the channel.
func (s *ProductService) ListForChannel(ctx context.Context, channelID int64, q StorefrontQuery) (*StorefrontPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultStorefrontLimit
	}
	if q.Limit > shared.MaxLimit {
		q.Limit = shared.MaxLimit
	}

	base := func() *gorm.DB {
		db := s.onChannel(ctx, channelID)
		if q.Featured {
			db = db.Where("products.is_featured = ?", true)
		}
		if q.OnSale {
			db = db.Where("products.sale_price > ?", 0)
		}
		if term := strings.TrimSpace(q.Search); term != "" {
			db = db.Where("LOWER(products.name) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(term))+"%")
		}
		if q.CategoryID != 0 {
			db = db.Where("products.id IN (?)", s.DB(ctx).Table("product_categories").
				Select("product_id").Where("category_id = ?", q.CategoryID))
		}
		return db
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count channel %d products: %w", channelID, err)
	}

	products := make([]models.Product, 0)
	err := base().Order("products.name").Order("products.id").
		Limit(q.Limit).Offset((q.Page - 1) * q.Limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("list channel %d products: %w", channelID, err)
	}

	thumbs, err := s.thumbnails(ctx, products)
	if err != nil {
		return nil, err
	}
	out := make([]StorefrontProduct, len(products))
	for i, p := range products {
		out[i] = StorefrontProduct{Product: p, ThumbnailImage: thumbs[p.ID]}
	}
	return &StorefrontPage{Products: out, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

// GetBySlug returns the product whose url_path is slug (with or without a
// leading slash), with images and variants in sort order. It returns nil
// when the product is hidden, deleted or not visible on channelID.
func (s *ProductService) GetBySlug(ctx context.Context, slug string, channelID int64) (*models.Product, error) {
	slug = strings.TrimPrefix(slug, "/")
	var p models.Product
	err := s.onChannel(ctx, channelID).
		Where("products.url_path IN ?", []string{slug, "/" + slug}).
		Preload("Images", bySortOrder).
		Preload("Variants", bySortOrder).
		Order("products.id").
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product by slug %q: %w", slug, err)
	}
	return &p, nil
}

func (s *ProductService) onChannel(ctx context.Context, channelID int64) *gorm.DB {
	assigned := s.DB(ctx).Table("product_channel_assignments").
		Select("product_id").
		Where("channel_id = ? AND is_visible = ?", channelID, true)
	return s.Query(ctx).
		Where("products.is_visible = ?", true).
		Where("products.id IN (?)", assigned)
}

func (s *ProductService) thumbnails(ctx context.Context, products []models.Product) (map[int64]*models.ProductImage, error) {
	out := make(map[int64]*models.ProductImage, len(products))
	if len(products) == 0 {
		return out, nil
	}
	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	var images []models.ProductImage
	err := s.DB(ctx).
		Where("product_id IN ? AND is_thumbnail = ?", ids, true).
		Order("sort_order").
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("load thumbnails: %w", err)
	}
	for i := range images {
		img := &images[i]
		if _, seen := out[img.ProductID]; !seen {
			out[img.ProductID] = img
		}
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
