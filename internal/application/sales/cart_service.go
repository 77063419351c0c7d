package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/crud"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// CartConfig describes the carts table.
func CartConfig() crud.Config {
	return crud.Config{
		ResourceName:  "Cart",
		SortColumns:   persistence.SortColumns("id", "created_at", "updated_at"),
		FilterColumns: persistence.SortColumns("channel_id", "customer_id", "account_id", "contact_id", "status"),
		ForeignKeys: []crud.ForeignKey{
			{Table: "channels", ResourceName: "Channel", Field: "channel_id"},
			{Table: "customers", ResourceName: "Customer", Field: "customer_id", Optional: true},
			{Table: "accounts", ResourceName: "Account", Field: "account_id", Optional: true},
			{Table: "contacts", ResourceName: "Contact", Field: "contact_id", Optional: true},
		},
		Dependencies: []crud.Dependency{{
			Table:        "cart_items",
			ForeignKey:   "cart_id",
			ResourceName: "cart item",
			Message:      "Cannot delete cart because it has {count} item(s).",
		}},
		Includes: []crud.Include{{Name: "items", Association: "Items", Scope: withProduct("cart_items")}},
	}
}

// CartService manages carts.
type CartService struct {
	*crud.Service[models.Cart]
}

// NewCartService creates a CartService
func NewCartService(db *gorm.DB) *CartService {
	h := &cartHooks{}
	s := &CartService{Service: crud.MustNew[models.Cart](db, CartConfig(), h)}
	h.now = s.Now
	return s
}

// GetByUUID returns the cart with the given public id, or nil.
func (s *CartService) GetByUUID(ctx context.Context, id string) (*models.Cart, error) {
	cart, err := takeByUUID[models.Cart](s.DB(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("get cart by uuid: %w", err)
	}
	return cart, nil
}

// GetWithItems returns the cart with its items and their product details.
func (s *CartService) GetWithItems(ctx context.Context, id int64) (*models.Cart, error) {
	return s.GetByID(ctx, id, "items")
}

// MarkCompleted marks the cart completed.
func (s *CartService) MarkCompleted(ctx context.Context, id int64) error {
	return s.MarkCompletedTx(s.DB(ctx), id)
}

// MarkCompletedTx marks the cart completed inside tx.
func (s *CartService) MarkCompletedTx(tx *gorm.DB, id int64) error {
	res := tx.Model(&models.Cart{}).Where("id = ?", id).Updates(map[string]any{
		"status":     models.CartStatusCompleted,
		"updated_at": s.Now(),
	})
	if res.Error != nil {
		return fmt.Errorf("complete cart %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("Cart", id)
	}
	return nil
}

// ExpireStale marks active carts whose expiry has passed as expired and
// returns how many were changed.
func (s *CartService) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	res := s.DB(ctx).Model(&models.Cart{}).
		Where("status = ? AND expires_at < ?", models.CartStatusActive, now).
		Updates(map[string]any{"status": models.CartStatusExpired, "updated_at": now})
	if res.Error != nil {
		return 0, fmt.Errorf("expire carts: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ActiveByUUID returns the active cart with the given public id on
// channelID, or nil.
func (s *CartService) ActiveByUUID(ctx context.Context, id string, channelID int64) (*models.Cart, error) {
	cart, err := takeByUUID[models.Cart](s.DB(ctx), id, func(db *gorm.DB) *gorm.DB {
		return db.Where("channel_id = ? AND status = ?", channelID, models.CartStatusActive)
	})
	if err != nil {
		return nil, fmt.Errorf("get active cart: %w", err)
	}
	return cart, nil
}

type cartHooks struct {
	crud.NoHooks[models.Cart]
	now func() time.Time
}

func (h *cartHooks) BeforeCreate(ctx context.Context, tx *gorm.DB, values map[string]any) error {
	applyCodeDefaults(values, "coupon_codes", "gift_certificate_codes")
	return applyHeaderDefaults(ctx, tx, values, models.CartStatusActive,
		[]string{"base_amount", "discount_amount", "tax_amount", "cart_amount"}, h.now())
}
