package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// CustomerGroup segments customers for pricing and category access.
type CustomerGroup struct {
	Model
	Name               string           `gorm:"size:255;not null" json:"name"`
	DiscountType       *string          `gorm:"size:20" json:"discount_type"`
	DiscountAmount     *decimal.Decimal `gorm:"type:numeric(19,4)" json:"discount_amount"`
	CategoryAccessType string           `gorm:"size:20;default:all" json:"category_access_type"`
	IsDefault          *bool            `gorm:"default:false" json:"is_default"`
	IsGroupForGuests   *bool            `gorm:"default:false" json:"is_group_for_guests"`
}

func (CustomerGroup) TableName() string { return "customer_groups" }

// Customer is a storefront account. Emails are unique per origin channel.
type Customer struct {
	Model
	OriginChannelID  *int64          `gorm:"uniqueIndex:customer_channel_email,priority:1" json:"origin_channel_id"`
	Email            string          `gorm:"size:255;not null;uniqueIndex:customer_channel_email,priority:2;index" json:"email"`
	PasswordHash     *string         `gorm:"size:255" json:"-"`
	CustomerGroupID  *int64          `gorm:"index" json:"customer_group_id"`
	FirstName        *string         `gorm:"size:100" json:"first_name"`
	LastName         *string         `gorm:"size:100" json:"last_name"`
	Company          *string         `gorm:"size:255" json:"company"`
	Phone            *string         `gorm:"size:50" json:"phone"`
	StoreCredit      decimal.Decimal `gorm:"type:numeric(19,4);not null;default:0" json:"store_credit"`
	IsActive         *bool           `gorm:"default:true" json:"is_active"`
	AcceptsMarketing *bool           `gorm:"default:false" json:"accepts_marketing"`
	Notes            *string         `json:"notes"`
	Attributes       datatypes.JSON  `gorm:"type:jsonb;default:'{}'" json:"attributes"`
	Metafields       datatypes.JSON  `gorm:"type:jsonb;default:'{}'" json:"metafields"`
}

func (Customer) TableName() string { return "customers" }

// FullName joins first and last name, skipping missing parts.
func (c *Customer) FullName() string {
	name := ""
	if c.FirstName != nil {
		name = *c.FirstName
	}
	if c.LastName != nil && *c.LastName != "" {
		if name != "" {
			name += " "
		}
		name += *c.LastName
	}
	return name
}
