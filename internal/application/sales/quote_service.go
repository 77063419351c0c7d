package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/crud"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// QuoteConfig describes the quotes table.
func QuoteConfig() crud.Config {
	return crud.Config{
		ResourceName:  "Quote",
		SortColumns:   persistence.SortColumns("id", "created_at", "updated_at", "submitted_at"),
		FilterColumns: persistence.SortColumns("channel_id", "customer_id", "status"),
		ForeignKeys: []crud.ForeignKey{
			{Table: "channels", ResourceName: "Channel", Field: "channel_id"},
			{Table: "customers", ResourceName: "Customer", Field: "customer_id", Optional: true},
		},
		Dependencies: []crud.Dependency{{
			Table:        "quote_items",
			ForeignKey:   "quote_id",
			ResourceName: "quote item",
			Message:      "Cannot delete quote because it has {count} item(s).",
		}},
		Includes: []crud.Include{{Name: "items", Association: "Items", Scope: withProduct("quote_items")}},
	}
}

// QuoteService manages requests for quotation.
type QuoteService struct {
	*crud.Service[models.Quote]
}

// NewQuoteService creates a QuoteService
func NewQuoteService(db *gorm.DB) *QuoteService {
	h := &quoteHooks{}
	s := &QuoteService{Service: crud.MustNew[models.Quote](db, QuoteConfig(), h)}
	h.now = s.Now
	return s
}

// GetByUUID returns the quote with the given public id, or nil.
func (s *QuoteService) GetByUUID(ctx context.Context, id string) (*models.Quote, error) {
	q, err := takeByUUID[models.Quote](s.DB(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("get quote by uuid: %w", err)
	}
	return q, nil
}

// DraftByUUID returns the draft quote with the given public id on
// channelID, or nil.
func (s *QuoteService) DraftByUUID(ctx context.Context, id string, channelID int64) (*models.Quote, error) {
	q, err := takeByUUID[models.Quote](s.DB(ctx), id, func(db *gorm.DB) *gorm.DB {
		return db.Where("channel_id = ? AND status = ?", channelID, models.QuoteStatusDraft)
	})
	if err != nil {
		return nil, fmt.Errorf("get draft quote: %w", err)
	}
	return q, nil
}

// GetWithItems returns the quote with its items and their product details.
func (s *QuoteService) GetWithItems(ctx context.Context, id int64) (*models.Quote, error) {
	return s.GetByID(ctx, id, "items")
}

// Submission is what a customer attaches when submitting a quote.
type Submission struct {
	CustomerID *int64
	Email      *string
	Notes      *string
}

// MarkSubmitted submits a draft quote.
func (s *QuoteService) MarkSubmitted(ctx context.Context, id int64, sub Submission) (*models.Quote, error) {
	var out *models.Quote
	err := s.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		out, err = s.MarkSubmittedTx(tx, id, sub)
		return err
	})
	return out, err
}

// MarkSubmittedTx submits a draft quote inside tx. Quotes that are no longer
// drafts are rejected with a conflict.
func (s *QuoteService) MarkSubmittedTx(tx *gorm.DB, id int64, sub Submission) (*models.Quote, error) {
	q, err := s.GetByIDTx(tx, id)
	if err != nil {
		return nil, err
	}
	if q.Status != models.QuoteStatusDraft {
		return nil, shared.NewConflict("Quote has already been submitted.")
	}

	now := s.Now()
	values := map[string]any{
		"status":       models.QuoteStatusSubmitted,
		"submitted_at": now,
		"updated_at":   now,
	}
	if sub.CustomerID != nil {
		values["customer_id"] = *sub.CustomerID
	}
	if sub.Email != nil {
		values["email"] = *sub.Email
	}
	if sub.Notes != nil {
		values["notes"] = *sub.Notes
	}
	if err := tx.Model(&models.Quote{}).Where("id = ?", id).Updates(values).Error; err != nil {
		return nil, fmt.Errorf("submit quote %d: %w", id, err)
	}
	return s.GetByIDTx(tx, id)
}

// ListForCustomer returns the customer's quotes on channelID, newest first.
func (s *QuoteService) ListForCustomer(ctx context.Context, customerID, channelID int64) ([]models.Quote, error) {
	quotes := make([]models.Quote, 0)
	err := s.DB(ctx).
		Where("customer_id = ? AND channel_id = ?", customerID, channelID).
		Order("created_at DESC").Order("id DESC").
		Find(&quotes).Error
	if err != nil {
		return nil, fmt.Errorf("list customer %d quotes: %w", customerID, err)
	}
	return quotes, nil
}

// ExpireStale marks draft quotes whose expiry has passed as expired.
func (s *QuoteService) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	res := s.DB(ctx).Model(&models.Quote{}).
		Where("status = ? AND expires_at < ?", models.QuoteStatusDraft, now).
		Updates(map[string]any{"status": models.QuoteStatusExpired, "updated_at": now})
	if res.Error != nil {
		return 0, fmt.Errorf("expire quotes: %w", res.Error)
	}
	return res.RowsAffected, nil
}

type quoteHooks struct {
	crud.NoHooks[models.Quote]
	now func() time.Time
}

func (h *quoteHooks) BeforeCreate(ctx context.Context, tx *gorm.DB, values map[string]any) error {
	return applyHeaderDefaults(ctx, tx, values, models.QuoteStatusDraft,
		[]string{"base_amount", "discount_amount", "tax_amount", "quote_amount"}, h.now())
}
