package models

import (
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/sales"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Cart statuses
const (
	CartStatusActive    = "active"
	CartStatusCompleted = "completed"
	CartStatusExpired   = "expired"
)

// Quote statuses
const (
	QuoteStatusDraft     = "draft"
	QuoteStatusSubmitted = "submitted"
	QuoteStatusExpired   = "expired"
)

// Order and payment statuses set at checkout
const (
	OrderStatusPending   = "pending"
	PaymentStatusPending = "pending"
)

// LineItem holds the columns shared by cart and quote lines. ProductName,
// ProductSKU and ProductURLPath are read-only and only populated by queries
// that join products.
type LineItem struct {
	ProductID          int64            `gorm:"not null;index" json:"product_id"`
	VariantID          *int64           `json:"variant_id"`
	Quantity           int              `gorm:"not null;default:1" json:"quantity"`
	ListPrice          decimal.Decimal  `gorm:"type:numeric(19,4);not null" json:"list_price"`
	SalePrice          *decimal.Decimal `gorm:"type:numeric(19,4)" json:"sale_price"`
	ExtendedListPrice  *decimal.Decimal `gorm:"type:numeric(19,4)" json:"extended_list_price"`
	ExtendedSalePrice  *decimal.Decimal `gorm:"type:numeric(19,4)" json:"extended_sale_price"`
	DiscountAmount     *decimal.Decimal `gorm:"type:numeric(19,4);default:0" json:"discount_amount"`
	AppliedCoupons     datatypes.JSON   `gorm:"type:jsonb;default:'[]'" json:"applied_coupons"`
	ModifierSelections datatypes.JSON   `gorm:"type:jsonb;default:'[]'" json:"modifier_selections"`
	GiftMessage        *string          `json:"gift_message"`
	RecipientEmail     *string          `gorm:"size:255" json:"recipient_email"`

	ProductName    *string `gorm:"->;-:migration" json:"product_name,omitempty"`
	ProductSKU     *string `gorm:"column:product_sku;->;-:migration" json:"product_sku,omitempty"`
	ProductURLPath *string `gorm:"column:product_url_path;->;-:migration" json:"product_url_path,omitempty"`
}

// Line returns the priced view used for total calculations.
func (l *LineItem) Line() sales.Line {
	return sales.Line{
		Quantity:          l.Quantity,
		ListPrice:         l.ListPrice,
		SalePrice:         l.SalePrice,
		ExtendedListPrice: l.ExtendedListPrice,
		ExtendedSalePrice: l.ExtendedSalePrice,
		DiscountAmount:    l.DiscountAmount,
	}
}

// Cart is a shopping cart on one channel.
type Cart struct {
	Model
	ChannelID            int64           `gorm:"not null;index" json:"channel_id"`
	CustomerID           *int64          `gorm:"index" json:"customer_id"`
	AccountID            *int64          `json:"account_id"`
	ContactID            *int64          `json:"contact_id"`
	CurrencyCode         string          `gorm:"size:3;not null;default:USD" json:"currency_code"`
	BaseAmount           decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0" json:"base_amount"`
	DiscountAmount       decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0" json:"discount_amount"`
	TaxAmount            decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0" json:"tax_amount"`
	CartAmount           decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0" json:"cart_amount"`
	CouponCodes          pq.StringArray  `gorm:"type:text[];default:'{}'" json:"coupon_codes"`
	GiftCertificateCodes pq.StringArray  `gorm:"type:text[];default:'{}'" json:"gift_certificate_codes"`
	Email                *string         `gorm:"size:255" json:"email"`
	Locale               *string         `gorm:"size:10" json:"locale"`
	Status               string          `gorm:"size:20;default:active;index" json:"status"`
	ExpiresAt            *time.Time      `json:"expires_at"`
	Items                []CartItem      `gorm:"foreignKey:CartID" json:"items,omitempty"`
}

func (Cart) TableName() string { return "carts" }

// CartItem is one line of a cart.
type CartItem struct {
	Model
	CartID int64 `gorm:"not null;index" json:"cart_id"`
	LineItem
}

func (CartItem) TableName() string { return "cart_items" }

// Quote is a request for quotation built like a cart and submitted by a
// signed-in customer.
type Quote struct {
	Model
	ChannelID      int64           `gorm:"not null;index" json:"channel_id"`
	CustomerID     *int64          `gorm:"index" json:"customer_id"`
	CurrencyCode   string          `gorm:"size:3;not null;default:USD" json:"currency_code"`
	BaseAmount     decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0" json:"base_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0" json:"discount_amount"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0" json:"tax_amount"`
	QuoteAmount    decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0" json:"quote_amount"`
	Email          *string         `gorm:"size:255" json:"email"`
	Notes          *string         `json:"notes"`
	Status         string          `gorm:"size:20;default:draft;index" json:"status"`
	SubmittedAt    *time.Time      `json:"submitted_at"`
	ExpiresAt      *time.Time      `json:"expires_at"`
	Items          []QuoteItem     `gorm:"foreignKey:QuoteID" json:"items,omitempty"`
}

func (Quote) TableName() string { return "quotes" }

// QuoteItem is one line of a quote.
type QuoteItem struct {
	Model
	QuoteID int64 `gorm:"not null;index" json:"quote_id"`
	LineItem
}

func (QuoteItem) TableName() string { return "quote_items" }

// Order is a placed order. BillingAddress is the JSON address captured at
// checkout.
type Order struct {
	Model
	ChannelID       int64           `gorm:"not null;index" json:"channel_id"`
	CustomerID      *int64          `gorm:"index" json:"customer_id"`
	OrderNumber     *string         `gorm:"size:50;uniqueIndex" json:"order_number"`
	Status          string          `gorm:"size:50;not null;default:pending;index" json:"status"`
	PaymentStatus   string          `gorm:"size:50;default:pending" json:"payment_status"`
	CurrencyCode    string          `gorm:"size:3;not null;default:USD" json:"currency_code"`
	SubtotalExTax   decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0" json:"subtotal_ex_tax"`
	SubtotalIncTax  decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0" json:"subtotal_inc_tax"`
	ShippingCost    decimal.Decimal `gorm:"column:shipping_cost_ex_tax;type:numeric(19,4);not null;default:0" json:"shipping_cost_ex_tax"`
	DiscountAmount  decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0" json:"discount_amount"`
	TotalExTax      decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0" json:"total_ex_tax"`
	TotalIncTax     decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0" json:"total_inc_tax"`
	TotalTax        decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0" json:"total_tax"`
	ItemsTotal      int             `gorm:"default:0" json:"items_total"`
	ItemsShipped    int             `gorm:"default:0" json:"items_shipped"`
	RefundedAmount  decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0" json:"refunded_amount"`
	BillingAddress  datatypes.JSON  `gorm:"type:jsonb;not null" json:"billing_address"`
	CustomerMessage *string         `json:"customer_message"`
	StaffNotes      *string         `json:"staff_notes"`
	PaymentMethod   *string         `gorm:"size:100" json:"payment_method"`
	ShippedAt       *time.Time      `json:"shipped_at"`
	Metafields      datatypes.JSON  `gorm:"type:jsonb;default:'{}'" json:"metafields"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

func (Order) TableName() string { return "orders" }

// OrderItem is a line of an order with prices frozen at checkout.
type OrderItem struct {
	Model
	OrderID        int64           `gorm:"not null;index" json:"order_id"`
	ProductID      *int64          `gorm:"index" json:"product_id"`
	VariantID      *int64          `json:"variant_id"`
	Name           string          `gorm:"size:255;not null" json:"name"`
	SKU            *string         `gorm:"column:sku;size:100" json:"sku"`
	Quantity       int             `gorm:"not null;default:1" json:"quantity"`
	BasePrice      decimal.Decimal `gorm:"type:numeric(19,4);not null" json:"base_price"`
	PriceExTax     decimal.Decimal `gorm:"type:numeric(19,4);not null" json:"price_ex_tax"`
	PriceIncTax    decimal.Decimal `gorm:"type:numeric(19,4);not null" json:"price_inc_tax"`
	PriceTax       decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0" json:"price_tax"`
	BaseTotal      decimal.Decimal `gorm:"type:numeric(19,4);not null" json:"base_total"`
	TotalExTax     decimal.Decimal `gorm:"type:numeric(19,4);not null" json:"total_ex_tax"`
	TotalIncTax    decimal.Decimal `gorm:"type:numeric(19,4);not null" json:"total_inc_tax"`
	TotalTax       decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0" json:"total_tax"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0" json:"discount_amount"`
	Type           string          `gorm:"size:20;default:physical" json:"type"`
	ProductOptions datatypes.JSON  `gorm:"type:jsonb;default:'[]'" json:"product_options"`
}

func (OrderItem) TableName() string { return "order_items" }
