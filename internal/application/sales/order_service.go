package sales

import (
	"context"
	"fmt"
	"time"

	domain "github.com/cmlibra71/keenan-group-channels/internal/domain/sales"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/crud"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderConfig describes the orders table.
func OrderConfig() crud.Config {
	return crud.Config{
		ResourceName:  "Order",
		SortColumns:   persistence.SortColumns("id", "created_at", "updated_at", "order_number"),
		FilterColumns: persistence.SortColumns("channel_id", "customer_id", "status", "payment_status"),
		ForeignKeys: []crud.ForeignKey{
			{Table: "channels", ResourceName: "Channel", Field: "channel_id"},
			{Table: "customers", ResourceName: "Customer", Field: "customer_id", Optional: true},
		},
		UniqueConstraints: []crud.Unique{
			{Fields: []string{"order_number"}, Message: "Order number is already in use."},
		},
		Dependencies: []crud.Dependency{{
			Table:        "order_items",
			ForeignKey:   "order_id",
			ResourceName: "order item",
			Message:      "Cannot delete order because it has {count} item(s).",
		}},
		Includes: []crud.Include{{
			Name:        "items",
			Association: "Items",
			Scope:       func(db *gorm.DB) *gorm.DB { return db.Order("id") },
		}},
	}
}

// OrderService manages orders.
type OrderService struct {
	*crud.Service[models.Order]
}

// NewOrderService creates an OrderService
func NewOrderService(db *gorm.DB) *OrderService {
	h := &orderHooks{}
	s := &OrderService{Service: crud.MustNew[models.Order](db, OrderConfig(), h)}
	h.now = s.Now
	return s
}

// ListForCustomer returns the customer's orders on channelID, newest first.
func (s *OrderService) ListForCustomer(ctx context.Context, customerID, channelID int64) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	err := s.DB(ctx).
		Where("customer_id = ? AND channel_id = ?", customerID, channelID).
		Order("created_at DESC").Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list customer %d orders: %w", customerID, err)
	}
	return orders, nil
}

// orderHooks number new orders. The number is derived from the order's own
// uuid, which is therefore fixed here rather than by the model.
type orderHooks struct {
	crud.NoHooks[models.Order]
	now func() time.Time
}

func (h *orderHooks) BeforeCreate(_ context.Context, _ *gorm.DB, values map[string]any) error {
	for key, def := range map[string]string{
		"status":         models.OrderStatusPending,
		"payment_status": models.PaymentStatusPending,
	} {
		if s, _ := values[key].(string); s == "" {
			values[key] = def
		}
	}
	if n, _ := values["order_number"].(string); n != "" {
		return nil
	}
	id := uuid.New()
	values["uuid"] = id
	values["order_number"] = domain.NewOrderNumber(h.now(), id)
	return nil
}
