package storefront

import (
	"context"
	"net/http"

	"github.com/cmlibra71/keenan-group-channels/internal/application/sales"
	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/logger"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

var errQuoteEmpty = shared.NewAPIError(http.StatusUnprocessableEntity, "Validation Error", "Quote is empty.", nil)

// draftQuote returns the draft quote the cookie points at, or nil.
func (s *Storefront) draftQuote(ctx context.Context, quoteID string) (*models.Quote, error) {
	if quoteID == "" {
		return nil, nil
	}
	return s.svc.Quotes.DraftByUUID(ctx, quoteID, s.channelID)
}

// GetQuote returns the draft quote with its items, or nil.
func (s *Storefront) GetQuote(ctx context.Context, quoteID string) (*models.Quote, error) {
	q, err := s.draftQuote(ctx, quoteID)
	if err != nil || q == nil {
		return nil, err
	}
	return s.svc.Quotes.GetWithItems(ctx, q.ID)
}

// AddToQuote adds one unit to the shopper's draft quote, creating it first
// if needed. A signed-in shopper's quote is linked to them.
func (s *Storefront) AddToQuote(ctx context.Context, quoteID string, in LineInput, session *Session) (*models.Quote, error) {
	list, sale, err := s.price(ctx, in)
	if err != nil {
		return nil, err
	}

	q, err := s.draftQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		if q, err = s.svc.Quotes.Create(ctx, map[string]any{"channel_id": s.channelID}); err != nil {
			return nil, err
		}
		logger.L(ctx).Info("Quote created", zap.Int64("quote_id", q.ID))
	}
	if session != nil && q.CustomerID == nil {
		q, err = s.svc.Quotes.Update(ctx, q.ID, map[string]any{
			"customer_id": session.CustomerID,
			"email":       session.Email,
		})
		if err != nil {
			return nil, err
		}
	}

	existing, err := s.svc.QuoteItems.FindByProductVariant(ctx, q.ID, in.ProductID, in.VariantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		_, err = s.svc.QuoteItems.UpdateForParent(ctx, q.ID, existing.ID, map[string]any{
			"quantity": existing.Quantity + 1,
		})
	} else {
		_, err = s.svc.QuoteItems.CreateForParent(ctx, q.ID, lineValues(in, list, sale))
	}
	if err != nil {
		return nil, err
	}
	return s.svc.Quotes.GetWithItems(ctx, q.ID)
}

// UpdateQuoteItem sets the quantity of a line. A quantity of zero or less
// removes it.
func (s *Storefront) UpdateQuoteItem(ctx context.Context, quoteID string, itemID int64, quantity int) (*models.Quote, error) {
	q, err := s.draftQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, errQuoteNotFound
	}

	if quantity <= 0 {
		err = s.svc.QuoteItems.DeleteForParent(ctx, q.ID, itemID)
	} else {
		_, err = s.svc.QuoteItems.UpdateForParent(ctx, q.ID, itemID, map[string]any{"quantity": quantity})
	}
	if err != nil {
		return nil, err
	}
	return s.svc.Quotes.GetWithItems(ctx, q.ID)
}

// RemoveQuoteItem deletes a line.
func (s *Storefront) RemoveQuoteItem(ctx context.Context, quoteID string, itemID int64) (*models.Quote, error) {
	return s.UpdateQuoteItem(ctx, quoteID, itemID, 0)
}

// SubmitQuote submits the draft quote under the signed-in customer. The
// caller clears the quote cookie afterwards.
func (s *Storefront) SubmitQuote(ctx context.Context, quoteID string, notes *string, session *Session) (*models.Quote, error) {
	q, err := s.draftQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, errQuoteNotFound
	}
	if session == nil {
		return nil, ErrLoginRequired
	}

	n, err := s.svc.QuoteItems.Count(ctx, s.svc.QuoteItems.ParentScope(q.ID))
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errQuoteEmpty
	}

	submitted, err := s.svc.Quotes.MarkSubmitted(ctx, q.ID, sales.Submission{
		CustomerID: &session.CustomerID,
		Email:      &session.Email,
		Notes:      notes,
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Quote submitted",
		zap.Int64("quote_id", submitted.ID),
		zap.Int64("customer_id", session.CustomerID))
	s.metrics.QuoteSubmitted(s.channelID)
	return submitted, nil
}

// ListQuotes returns the signed-in customer's quotes on this channel,
// newest first.
func (s *Storefront) ListQuotes(ctx context.Context, session *Session) ([]models.Quote, error) {
	if session == nil {
		return nil, ErrLoginRequired
	}
	return s.svc.Quotes.ListForCustomer(ctx, session.CustomerID, s.channelID)
}
