package catalog

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/crud"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ObjectStore stores uploaded image files.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	DeleteObject(ctx context.Context, key string) error
	PublicURL(key string) string
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ProductImageConfig describes the product_images table.
func ProductImageConfig() crud.Config {
	return crud.Config{
		ResourceName:  "Image",
		DefaultSort:   "sort_order",
		SortColumns:   persistence.SortColumns("id", "sort_order", "created_at"),
		FilterColumns: persistence.SortColumns("is_thumbnail", "variant_id"),
		ForeignKeys: []crud.ForeignKey{
			{Table: "product_variants", ResourceName: "Variant", Field: "variant_id", Optional: true},
		},
	}
}

// ProductImageService manages the images of a product.
type ProductImageService struct {
	*crud.NestedService[models.ProductImage]
	store   ObjectStore
	maxSize int64
	logger  *zap.Logger
}

// ImageOption configures a ProductImageService
type ImageOption func(*ProductImageService)

// WithObjectStore enables file uploads into store, rejecting files over maxSize bytes.
func WithObjectStore(store ObjectStore, maxSize int64) ImageOption {
	return func(s *ProductImageService) {
		s.store = store
		s.maxSize = maxSize
	}
}

// WithImageLogger sets the logger used for upload cleanup failures.
func WithImageLogger(l *zap.Logger) ImageOption {
	return func(s *ProductImageService) { s.logger = l }
}

// NewProductImageService creates a ProductImageService
func NewProductImageService(db *gorm.DB, opts ...ImageOption) *ProductImageService {
	s := &ProductImageService{
		NestedService: crud.MustNewNested[models.ProductImage](db, ProductImageConfig(), crud.Parent{
			Table: "products", ResourceName: "Product", ForeignKey: "product_id",
		}, thumbnailHooks{}),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ImageUpload is an image file with its row attributes.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
	AltText     string
	IsThumbnail bool
	SortOrder   int
}

// Upload stores the file and creates the image row that points at it. The
// stored object is removed again when the row cannot be created.
func (s *ProductImageService) Upload(ctx context.Context, productID int64, in ImageUpload) (*models.ProductImage, error) {
	if s.store == nil {
		return nil, shared.NewBadRequest("Image uploads are not enabled.", nil)
	}
	if len(in.Data) == 0 {
		return nil, shared.NewValidation("Validation failed", map[string]string{"file": "Image file is required."})
	}
	if s.maxSize > 0 && int64(len(in.Data)) > s.maxSize {
		return nil, shared.NewValidation("Validation failed", map[string]string{
			"file": fmt.Sprintf("Image must be at most %d bytes.", s.maxSize),
		})
	}
	contentType := strings.ToLower(strings.TrimSpace(in.ContentType))
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, shared.NewValidation("Validation failed", map[string]string{
			"file": "Image must be JPEG, PNG, WebP or GIF.",
		})
	}
	if err := s.ValidateParent(ctx, s.DB(ctx), productID); err != nil {
		return nil, err
	}

	key := path.Join("products", fmt.Sprint(productID), uuid.NewString()+ext)
	if err := s.store.Upload(ctx, key, in.Data, contentType); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	values := map[string]any{
		"url_standard": s.store.PublicURL(key),
		"is_thumbnail": in.IsThumbnail,
		"sort_order":   in.SortOrder,
	}
	if in.AltText != "" {
		values["alt_text"] = in.AltText
	} else if in.Filename != "" {
		values["alt_text"] = strings.TrimSuffix(path.Base(in.Filename), path.Ext(in.Filename))
	}
	img, err := s.CreateForParent(ctx, productID, values)
	if err != nil {
		if derr := s.store.DeleteObject(ctx, key); derr != nil {
			s.logger.Warn("failed to remove orphaned image", zap.String("key", key), zap.Error(derr))
		}
		return nil, err
	}
	return img, nil
}

// thumbnailHooks keep at most one thumbnail per product.
type thumbnailHooks struct {
	crud.NoHooks[models.ProductImage]
}

func (thumbnailHooks) BeforeCreate(ctx context.Context, tx *gorm.DB, values map[string]any) error {
	if !crud.Flag(values, "is_thumbnail") {
		return nil
	}
	productID, _ := crud.ID(values, "product_id")
	return clearThumbnail(tx, productID, 0)
}

func (thumbnailHooks) BeforeUpdate(ctx context.Context, tx *gorm.DB, values map[string]any, existing *models.ProductImage) error {
	if !crud.Flag(values, "is_thumbnail") {
		return nil
	}
	return clearThumbnail(tx, existing.ProductID, existing.ID)
}

func clearThumbnail(tx *gorm.DB, productID, keepID int64) error {
	err := tx.Model(&models.ProductImage{}).
		Where("product_id = ? AND is_thumbnail = ? AND id <> ?", productID, true, keepID).
		Update("is_thumbnail", false).Error
	if err != nil {
		return fmt.Errorf("clear thumbnail of product %d: %w", productID, err)
	}
	return nil
}
