package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/crud"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// CartItemConfig describes the cart_items table.
func CartItemConfig() crud.Config {
	return lineConfig("Cart Item", "cart_id", "This product/variant is already in the cart.")
}

// CartItemService manages the items of a cart. Every write reprices the
// line and recalculates the cart totals in the same transaction.
type CartItemService struct {
	*crud.NestedService[models.CartItem]
}

// NewCartItemService creates a CartItemService
func NewCartItemService(db *gorm.DB) *CartItemService {
	h := &lineHooks[models.CartItem]{
		header: header{table: "carts", foreignKey: "cart_id", totalColumn: "cart_amount"},
		line:   func(i *models.CartItem) *models.LineItem { return &i.LineItem },
		parent: func(i *models.CartItem) int64 { return i.CartID },
	}
	s := &CartItemService{NestedService: crud.MustNewNested[models.CartItem](db, CartItemConfig(), crud.Parent{
		Table: "carts", ResourceName: "Cart", ForeignKey: "cart_id",
	}, h)}
	h.now = s.Now
	return s
}

// FindByProductVariant returns the line of cartID for the product and
// variant, or nil. A nil variantID matches lines without a variant.
func (s *CartItemService) FindByProductVariant(ctx context.Context, cartID, productID int64, variantID *int64) (*models.CartItem, error) {
	return findLine[models.CartItem](s.DB(ctx), "cart_id", cartID, productID, variantID)
}

func findLine[T any](db *gorm.DB, headerKey string, headerID, productID int64, variantID *int64) (*T, error) {
	q := db.Where(headerKey+" = ? AND product_id = ?", headerID, productID)
	if variantID == nil {
		q = q.Where("variant_id IS NULL")
	} else {
		q = q.Where("variant_id = ?", *variantID)
	}
	row := new(T)
	err := q.Order("id").Take(row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find line: %w", err)
	}
	return row, nil
}
