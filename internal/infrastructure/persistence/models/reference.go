package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// The tables below are owned by B2B, pricing and inventory features that are
// not exposed through this service. They are modelled so foreign-key and
// delete-dependency checks have something to query.

// Account is a B2B company account.
type Account struct {
	Model
	Name            string  `gorm:"size:255;not null" json:"name"`
	CustomerGroupID *int64  `gorm:"index" json:"customer_group_id"`
	Status          string  `gorm:"size:20;default:active" json:"status"`
	Email           *string `gorm:"size:255" json:"email"`
}

func (Account) TableName() string { return "accounts" }

// Contact is a person acting for an account.
type Contact struct {
	Model
	AccountID int64   `gorm:"not null;index" json:"account_id"`
	Email     string  `gorm:"size:255;not null" json:"email"`
	FirstName *string `gorm:"size:100" json:"first_name"`
	LastName  *string `gorm:"size:100" json:"last_name"`
}

func (Contact) TableName() string { return "contacts" }

type PriceList struct {
	Model
	Name         string `gorm:"size:255;not null" json:"name"`
	CurrencyCode string `gorm:"size:3;not null;default:USD" json:"currency_code"`
	IsActive     *bool  `gorm:"default:true" json:"is_active"`
}

func (PriceList) TableName() string { return "price_lists" }

type PriceListRecord struct {
	ID               int64            `gorm:"primaryKey" json:"id"`
	PriceListID      int64            `gorm:"not null;index" json:"price_list_id"`
	VariantID        int64            `gorm:"not null;index" json:"variant_id"`
	Price            *decimal.Decimal `gorm:"type:numeric(19,4)" json:"price"`
	SalePrice        *decimal.Decimal `gorm:"type:numeric(19,4)" json:"sale_price"`
	BulkPricingTiers datatypes.JSON   `gorm:"type:jsonb;default:'[]'" json:"bulk_pricing_tiers"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (PriceListRecord) TableName() string { return "price_list_records" }

type PriceListAssignment struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	PriceListID     int64     `gorm:"not null" json:"price_list_id"`
	ChannelID       *int64    `json:"channel_id"`
	CustomerGroupID *int64    `json:"customer_group_id"`
	Priority        int       `gorm:"default:0" json:"priority"`
	CreatedAt       time.Time `json:"created_at"`
}

func (PriceListAssignment) TableName() string { return "price_list_assignments" }

type InventoryLocation struct {
	Model
	Name     string  `gorm:"size:255;not null" json:"name"`
	Code     *string `gorm:"size:50;uniqueIndex" json:"code"`
	IsActive *bool   `gorm:"default:true" json:"is_active"`
}

func (InventoryLocation) TableName() string { return "inventory_locations" }

type InventoryLevel struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	VariantID  int64     `gorm:"not null;index" json:"variant_id"`
	LocationID int64     `gorm:"not null;index" json:"location_id"`
	Available  int       `gorm:"not null;default:0" json:"available"`
	Reserved   int       `gorm:"not null;default:0" json:"reserved"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (InventoryLevel) TableName() string { return "inventory_levels" }
