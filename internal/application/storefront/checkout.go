package storefront

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	domain "github.com/cmlibra71/keenan-group-channels/internal/domain/sales"
	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/logger"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errCartEmpty        = shared.NewAPIError(http.StatusUnprocessableEntity, "Validation Error", "Cart is empty.", nil)
	errCheckoutRepeated = shared.NewConflict("This checkout has already been submitted.")
)

// CheckoutInput is the billing information collected at checkout.
type CheckoutInput struct {
	Email           string  `json:"email"`
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Address1        string  `json:"address1"`
	Address2        string  `json:"address2"`
	City            string  `json:"city"`
	State           string  `json:"state"`
	PostalCode      string  `json:"postal_code"`
	Country         string  `json:"country"`
	CustomerMessage *string `json:"customer_message"`
}

func (in *CheckoutInput) trim() {
	for _, f := range []*string{&in.Email, &in.FirstName, &in.LastName, &in.Address1,
		&in.Address2, &in.City, &in.State, &in.PostalCode, &in.Country} {
		*f = strings.TrimSpace(*f)
	}
}

func (in *CheckoutInput) validate() error {
	required := map[string]string{
		"email":       in.Email,
		"first_name":  in.FirstName,
		"last_name":   in.LastName,
		"address1":    in.Address1,
		"city":        in.City,
		"postal_code": in.PostalCode,
	}
	errs := map[string]string{}
	for field, v := range required {
		if v == "" {
			errs[field] = "Required."
		}
	}
	if len(errs) > 0 {
		return shared.NewValidation("Please fill in all required fields.", errs)
	}
	return nil
}

func (in *CheckoutInput) billingAddress() map[string]any {
	return map[string]any{
		"first_name":  in.FirstName,
		"last_name":   in.LastName,
		"email":       in.Email,
		"address1":    in.Address1,
		"address2":    in.Address2,
		"city":        in.City,
		"state":       in.State,
		"postal_code": in.PostalCode,
		"country":     in.Country,
	}
}

// Checkout turns the shopper's cart into a pending order. The order, its
// items and the cart completion are written in one transaction. A non-empty
// idempotencyKey that was already used is rejected. The caller clears the
// cart cookie afterwards.
func (s *Storefront) Checkout(ctx context.Context, cartID string, in CheckoutInput, session *Session, idempotencyKey string) (*models.Order, error) {
	in.trim()
	if in.Country == "" {
		in.Country = s.defaultCountry
	}

	key := ""
	if idempotencyKey != "" && s.idempotency != nil {
		key = fmt.Sprintf("checkout:%d:%s", s.channelID, idempotencyKey)
		seen, err := s.idempotency.IsProcessed(ctx, key)
		if err != nil {
			return nil, err
		}
		if seen {
			return nil, errCheckoutRepeated
		}
	}

	cart, err := s.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, errCartNotFound
	}
	if len(cart.Items) == 0 {
		return nil, errCartEmpty
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	lines := make([]domain.Line, len(cart.Items))
	rows := make([]map[string]any, len(cart.Items))
	for i := range cart.Items {
		lines[i] = cart.Items[i].Line()
		rows[i] = orderItemValues(&cart.Items[i])
	}

	values := map[string]any{
		"channel_id":       s.channelID,
		"status":           models.OrderStatusPending,
		"payment_status":   models.PaymentStatusPending,
		"currency_code":    cart.CurrencyCode,
		"subtotal_ex_tax":  cart.CartAmount,
		"subtotal_inc_tax": cart.CartAmount,
		"total_ex_tax":     cart.CartAmount,
		"total_inc_tax":    cart.CartAmount,
		"total_tax":        decimal.Zero,
		"items_total":      domain.ItemCount(lines),
		"billing_address":  in.billingAddress(),
		"customer_message": in.CustomerMessage,
	}
	if session != nil {
		values["customer_id"] = session.CustomerID
	}

	var order *models.Order
	err = s.svc.Orders.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		if order, err = s.svc.Orders.CreateTx(ctx, tx, values); err != nil {
			return err
		}
		if _, err = s.svc.OrderItems.CreateManyForParentTx(ctx, tx, order.ID, rows); err != nil {
			return err
		}
		return s.svc.Carts.MarkCompletedTx(tx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	if key != "" {
		if _, err := s.idempotency.MarkProcessed(ctx, key, shared.DefaultIdempotencyTTL); err != nil {
			logger.L(ctx).Warn("Failed to record checkout key", zap.Error(err))
		}
	}

	logger.L(ctx).Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.Stringp("order_number", order.OrderNumber),
		zap.Int64("cart_id", cart.ID))
	s.metrics.OrderPlaced(order)
	return order, nil
}

// orderItemValues freezes a cart line into an order line. The unit price is
// the sale price when set, otherwise the list price.
func orderItemValues(item *models.CartItem) map[string]any {
	line := item.Line()
	unit := line.UnitPrice()
	total := line.LineTotal()

	name := fmt.Sprintf("Product #%d", item.ProductID)
	if item.ProductName != nil {
		name = *item.ProductName
	}
	return map[string]any{
		"product_id":    item.ProductID,
		"variant_id":    item.VariantID,
		"name":          name,
		"sku":           item.ProductSKU,
		"quantity":      item.Quantity,
		"base_price":    unit,
		"price_ex_tax":  unit,
		"price_inc_tax": unit,
		"price_tax":     decimal.Zero,
		"base_total":    total,
		"total_ex_tax":  total,
		"total_inc_tax": total,
		"total_tax":     decimal.Zero,
	}
}

// ListOrders returns the signed-in customer's orders on this channel.
func (s *Storefront) ListOrders(ctx context.Context, session *Session) ([]models.Order, error) {
	if session == nil {
		return nil, ErrLoginRequired
	}
	return s.svc.Orders.ListForCustomer(ctx, session.CustomerID, s.channelID)
}
