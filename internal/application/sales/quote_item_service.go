package sales

import (
	"context"

	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/crud"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// QuoteItemConfig describes the quote_items table.
func QuoteItemConfig() crud.Config {
	return lineConfig("Quote Item", "quote_id", "This product/variant is already in the quote.")
}

// QuoteItemService manages the items of a quote, keeping quote totals
// current the same way cart items do.
type QuoteItemService struct {
	*crud.NestedService[models.QuoteItem]
}

// NewQuoteItemService creates a QuoteItemService
func NewQuoteItemService(db *gorm.DB) *QuoteItemService {
	h := &lineHooks[models.QuoteItem]{
		header: header{table: "quotes", foreignKey: "quote_id", totalColumn: "quote_amount"},
		line:   func(i *models.QuoteItem) *models.LineItem { return &i.LineItem },
		parent: func(i *models.QuoteItem) int64 { return i.QuoteID },
	}
	s := &QuoteItemService{NestedService: crud.MustNewNested[models.QuoteItem](db, QuoteItemConfig(), crud.Parent{
		Table: "quotes", ResourceName: "Quote", ForeignKey: "quote_id",
	}, h)}
	h.now = s.Now
	return s
}

// FindByProductVariant returns the line of quoteID for the product and
// variant, or nil.
func (s *QuoteItemService) FindByProductVariant(ctx context.Context, quoteID, productID int64, variantID *int64) (*models.QuoteItem, error) {
	return findLine[models.QuoteItem](s.DB(ctx), "quote_id", quoteID, productID, variantID)
}
