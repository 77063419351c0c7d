package sales

import (
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/crud"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// OrderItemService manages the lines of an order.
type OrderItemService struct {
	*crud.NestedService[models.OrderItem]
}

// NewOrderItemService creates an OrderItemService
func NewOrderItemService(db *gorm.DB) *OrderItemService {
	cfg := crud.Config{
		ResourceName:  "Order Item",
		SortColumns:   persistence.SortColumns("id"),
		FilterColumns: persistence.SortColumns("product_id"),
	}
	return &OrderItemService{NestedService: crud.MustNewNested[models.OrderItem](db, cfg, crud.Parent{
		Table: "orders", ResourceName: "Order", ForeignKey: "order_id",
	}, nil)}
}
