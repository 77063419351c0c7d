package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Model carries the columns shared by every resource table: a serial id used
// in URLs and foreign keys, a public uuid, and the audit timestamps.
type Model struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns the public uuid when the caller did not supply one.
func (m *Model) BeforeCreate(_ *gorm.DB) error {
	if m.UUID == uuid.Nil {
		m.UUID = uuid.New()
	}
	return nil
}

// All returns one zero value of every model, in dependency order. Tests use
// it with AutoMigrate; production schemas come from migrations/.
func All() []any {
	return []any{
		&Channel{}, &Site{}, &ChannelSetting{},
		&CategoryTree{}, &Category{}, &Brand{},
		&Product{}, &ProductVariant{}, &ProductImage{},
		&ProductChannelAssignment{}, &ProductCategory{},
		&CustomerGroup{}, &Customer{}, &Account{}, &Contact{},
		&PriceList{}, &PriceListRecord{}, &PriceListAssignment{},
		&InventoryLocation{}, &InventoryLevel{},
		&Cart{}, &CartItem{}, &Quote{}, &QuoteItem{},
		&Order{}, &OrderItem{},
	}
}
