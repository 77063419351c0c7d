package storefront

import (
	"context"
	"errors"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/logger"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}

// activeCart returns the active cart the cookie points at, or nil.
func (s *Storefront) activeCart(ctx context.Context, cartID string) (*models.Cart, error) {
	if cartID == "" {
		return nil, nil
	}
	return s.svc.Carts.ActiveByUUID(ctx, cartID, s.channelID)
}

// GetCart returns the cart with its items, or nil when the shopper has none.
func (s *Storefront) GetCart(ctx context.Context, cartID string) (*models.Cart, error) {
	cart, err := s.activeCart(ctx, cartID)
	if err != nil || cart == nil {
		return nil, err
	}
	return s.svc.Carts.GetWithItems(ctx, cart.ID)
}

// AddToCart adds one unit of the product or variant to the shopper's cart,
// creating the cart first if needed. The returned cart's UUID belongs in
// the cart cookie.
func (s *Storefront) AddToCart(ctx context.Context, cartID string, in LineInput, session *Session) (*models.Cart, error) {
	list, sale, err := s.price(ctx, in)
	if err != nil {
		return nil, err
	}

	cart, err := s.activeCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		values := map[string]any{"channel_id": s.channelID}
		if session != nil {
			values["customer_id"] = session.CustomerID
			values["email"] = session.Email
		}
		if cart, err = s.svc.Carts.Create(ctx, values); err != nil {
			return nil, err
		}
		logger.L(ctx).Info("Cart created", zap.Int64("cart_id", cart.ID))
	}

	existing, err := s.svc.CartItems.FindByProductVariant(ctx, cart.ID, in.ProductID, in.VariantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		_, err = s.svc.CartItems.UpdateForParent(ctx, cart.ID, existing.ID, map[string]any{
			"quantity": existing.Quantity + 1,
		})
	} else {
		_, err = s.svc.CartItems.CreateForParent(ctx, cart.ID, lineValues(in, list, sale))
	}
	if err != nil {
		return nil, err
	}

	s.metrics.CartItemAdded(s.channelID)
	return s.svc.Carts.GetWithItems(ctx, cart.ID)
}

// UpdateCartItem sets the quantity of a line. A quantity of zero or less
// removes it.
func (s *Storefront) UpdateCartItem(ctx context.Context, cartID string, itemID int64, quantity int) (*models.Cart, error) {
	cart, err := s.activeCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, errCartNotFound
	}

	if quantity <= 0 {
		err = s.svc.CartItems.DeleteForParent(ctx, cart.ID, itemID)
	} else {
		_, err = s.svc.CartItems.UpdateForParent(ctx, cart.ID, itemID, map[string]any{"quantity": quantity})
	}
	if err != nil {
		return nil, err
	}
	return s.svc.Carts.GetWithItems(ctx, cart.ID)
}

// RemoveCartItem deletes a line.
func (s *Storefront) RemoveCartItem(ctx context.Context, cartID string, itemID int64) (*models.Cart, error) {
	return s.UpdateCartItem(ctx, cartID, itemID, 0)
}
