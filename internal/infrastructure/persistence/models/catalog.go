package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// CategoryTree groups categories; a tree may be bound to one channel.
type CategoryTree struct {
	Model
	Name       string     `gorm:"size:255;not null" json:"name"`
	ChannelID  *int64     `gorm:"index" json:"channel_id"`
	Categories []Category `gorm:"foreignKey:TreeID" json:"categories,omitempty"`
}

func (CategoryTree) TableName() string { return "category_trees" }

// Category is a node of a category tree. PathIDs and PathNames list the
// ancestors from the root down to and including the category itself.
type Category struct {
	Model
	TreeID          int64          `gorm:"not null;index" json:"tree_id"`
	ParentID        *int64         `gorm:"index" json:"parent_id"`
	Name            string         `gorm:"size:255;not null" json:"name"`
	Slug            string         `gorm:"size:255;not null" json:"slug"`
	Description     *string        `json:"description"`
	PathIDs         pq.Int64Array  `gorm:"column:path_ids;type:integer[];default:'{}'" json:"path_ids"`
	PathNames       pq.StringArray `gorm:"column:path_names;type:text[];default:'{}'" json:"path_names"`
	Depth           int            `gorm:"default:0" json:"depth"`
	SortOrder       int            `gorm:"default:0" json:"sort_order"`
	IsVisible       *bool          `gorm:"default:true" json:"is_visible"`
	PageTitle       *string        `gorm:"size:255" json:"page_title"`
	MetaDescription *string        `json:"meta_description"`
	MetaKeywords    *string        `json:"meta_keywords"`
	ImageURL        *string        `gorm:"column:image_url;size:500" json:"image_url"`
	Metafields      datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"metafields"`
}

func (Category) TableName() string { return "categories" }

// Brand is a product manufacturer or label.
type Brand struct {
	Model
	Name            string         `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Slug            string         `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	PageTitle       *string        `gorm:"size:255" json:"page_title"`
	MetaDescription *string        `json:"meta_description"`
	MetaKeywords    *string        `json:"meta_keywords"`
	SearchKeywords  *string        `json:"search_keywords"`
	ImageURL        *string        `gorm:"column:image_url;size:500" json:"image_url"`
	Metafields      datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"metafields"`
}

func (Brand) TableName() string { return "brands" }

// Product is a catalog item. Deletion is soft: IsDeleted and DeletedAt are set
// and the row disappears from every list and lookup.
type Product struct {
	Model
	Name                  string           `gorm:"size:255;not null;index" json:"name"`
	SKU                   *string          `gorm:"column:sku;size:100;uniqueIndex" json:"sku"`
	Type                  string           `gorm:"size:50;not null;default:physical" json:"type"`
	Description           *string          `json:"description"`
	DescriptionShort      *string          `json:"description_short"`
	Price                 decimal.Decimal  `gorm:"type:numeric(19,4);not null;default:0" json:"price"`
	CostPrice             *decimal.Decimal `gorm:"type:numeric(19,4)" json:"cost_price"`
	RetailPrice           *decimal.Decimal `gorm:"type:numeric(19,4)" json:"retail_price"`
	SalePrice             *decimal.Decimal `gorm:"type:numeric(19,4)" json:"sale_price"`
	IsTaxExempt           *bool            `gorm:"default:false" json:"is_tax_exempt"`
	Weight                *decimal.Decimal `gorm:"type:numeric(10,4)" json:"weight"`
	Width                 *decimal.Decimal `gorm:"type:numeric(10,4)" json:"width"`
	Height                *decimal.Decimal `gorm:"type:numeric(10,4)" json:"height"`
	Depth                 *decimal.Decimal `gorm:"type:numeric(10,4)" json:"depth"`
	InventoryLevel        int              `gorm:"default:0" json:"inventory_level"`
	InventoryWarningLevel int              `gorm:"default:0" json:"inventory_warning_level"`
	InventoryTracking     string           `gorm:"size:20;default:none" json:"inventory_tracking"`
	BrandID               *int64           `gorm:"index" json:"brand_id"`
	IsVisible             *bool            `gorm:"default:true" json:"is_visible"`
	IsFeatured            *bool            `gorm:"default:false" json:"is_featured"`
	Availability          string           `gorm:"size:50;default:available" json:"availability"`
	Condition             string           `gorm:"size:20;default:new" json:"condition"`
	PageTitle             *string          `gorm:"size:255" json:"page_title"`
	MetaDescription       *string          `json:"meta_description"`
	MetaKeywords          *string          `json:"meta_keywords"`
	SearchKeywords        *string          `json:"search_keywords"`
	URLPath               *string          `gorm:"column:url_path;size:500" json:"url_path"`
	MinPurchaseQuantity   *int             `gorm:"default:1" json:"min_purchase_quantity"`
	MaxPurchaseQuantity   *int             `json:"max_purchase_quantity"`
	RelatedProductIDs     pq.Int64Array    `gorm:"column:related_product_ids;type:integer[];default:'{}'" json:"related_product_ids"`
	Warranty              *string          `json:"warranty"`
	CustomFields          datatypes.JSON   `gorm:"type:jsonb;default:'{}'" json:"custom_fields"`
	Metafields            datatypes.JSON   `gorm:"type:jsonb;default:'{}'" json:"metafields"`
	IsDeleted             *bool            `gorm:"default:false" json:"is_deleted"`
	DeletedAt             *time.Time       `json:"deleted_at"`

	Images   []ProductImage   `gorm:"foreignKey:ProductID" json:"images,omitempty"`
	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
}

func (Product) TableName() string { return "products" }

// ProductVariant is a purchasable SKU of a product. Nil prices fall back to
// the product's.
type ProductVariant struct {
	Model
	ProductID                 int64            `gorm:"not null;index" json:"product_id"`
	SKU                       *string          `gorm:"column:sku;size:100;uniqueIndex" json:"sku"`
	Price                     *decimal.Decimal `gorm:"type:numeric(19,4)" json:"price"`
	CostPrice                 *decimal.Decimal `gorm:"type:numeric(19,4)" json:"cost_price"`
	SalePrice                 *decimal.Decimal `gorm:"type:numeric(19,4)" json:"sale_price"`
	RetailPrice               *decimal.Decimal `gorm:"type:numeric(19,4)" json:"retail_price"`
	Weight                    *decimal.Decimal `gorm:"type:numeric(10,4)" json:"weight"`
	InventoryLevel            int              `gorm:"default:0" json:"inventory_level"`
	InventoryWarningLevel     int              `gorm:"default:0" json:"inventory_warning_level"`
	UPC                       *string          `gorm:"column:upc;size:50" json:"upc"`
	GTIN                      *string          `gorm:"column:gtin;size:50" json:"gtin"`
	MPN                       *string          `gorm:"column:mpn;size:50" json:"mpn"`
	PurchasingDisabled        *bool            `gorm:"default:false" json:"purchasing_disabled"`
	PurchasingDisabledMessage *string          `json:"purchasing_disabled_message"`
	ImageURL                  *string          `gorm:"column:image_url;size:500" json:"image_url"`
	OptionDisplayName         *string          `gorm:"size:500" json:"option_display_name"`
	Metafields                datatypes.JSON   `gorm:"type:jsonb;default:'{}'" json:"metafields"`
	SortOrder                 int              `gorm:"default:0" json:"sort_order"`
}

func (ProductVariant) TableName() string { return "product_variants" }

// ProductImage is one image of a product; at most one per product is the
// thumbnail.
type ProductImage struct {
	Model
	ProductID    int64   `gorm:"not null;index" json:"product_id"`
	URLStandard  string  `gorm:"column:url_standard;size:500;not null" json:"url_standard"`
	URLThumbnail *string `gorm:"column:url_thumbnail;size:500" json:"url_thumbnail"`
	URLTiny      *string `gorm:"column:url_tiny;size:500" json:"url_tiny"`
	URLZoom      *string `gorm:"column:url_zoom;size:500" json:"url_zoom"`
	Description  *string `json:"description"`
	AltText      *string `gorm:"size:255" json:"alt_text"`
	IsThumbnail  *bool   `gorm:"default:false" json:"is_thumbnail"`
	SortOrder    int     `gorm:"default:0" json:"sort_order"`
	VariantID    *int64  `json:"variant_id"`
}

func (ProductImage) TableName() string { return "product_images" }

// ProductChannelAssignment makes a product available on a channel.
type ProductChannelAssignment struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	ProductID  int64     `gorm:"not null;uniqueIndex:product_channel_unique,priority:1" json:"product_id"`
	ChannelID  int64     `gorm:"not null;uniqueIndex:product_channel_unique,priority:2;index" json:"channel_id"`
	IsVisible  *bool     `gorm:"default:true" json:"is_visible"`
	IsFeatured *bool     `json:"is_featured"`
	AssignedAt time.Time `gorm:"autoCreateTime" json:"assigned_at"`
}

func (ProductChannelAssignment) TableName() string { return "product_channel_assignments" }

// ProductCategory places a product in a category.
type ProductCategory struct {
	ID         int64 `gorm:"primaryKey" json:"id"`
	ProductID  int64 `gorm:"not null;uniqueIndex:product_category_unique,priority:1" json:"product_id"`
	CategoryID int64 `gorm:"not null;uniqueIndex:product_category_unique,priority:2;index" json:"category_id"`
	SortOrder  int   `gorm:"default:0" json:"sort_order"`
	IsPrimary  *bool `gorm:"default:false" json:"is_primary"`
}

func (ProductCategory) TableName() string { return "product_categories" }
