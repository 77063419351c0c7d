package models

import (
	"time"

	"gorm.io/datatypes"
)

// Channel is a sales channel, usually one storefront.
type Channel struct {
	Model
	Name                string         `gorm:"size:255;not null" json:"name"`
	Type                string         `gorm:"size:50;not null;default:storefront" json:"type"`
	Platform            *string        `gorm:"size:100" json:"platform"`
	Status              string         `gorm:"size:20;not null;default:active" json:"status"`
	IsDefault           *bool          `gorm:"default:false" json:"is_default"`
	DefaultCurrencyCode *string        `gorm:"size:3;default:USD" json:"default_currency_code"`
	DefaultLocale       *string        `gorm:"size:10;default:en-US" json:"default_locale"`
	ConfigMeta          datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"config_meta"`
	Sites               []Site         `gorm:"foreignKey:ChannelID" json:"sites,omitempty"`
}

func (Channel) TableName() string { return "channels" }

// Site is a domain a channel is served on.
type Site struct {
	Model
	ChannelID       int64   `gorm:"not null;index" json:"channel_id"`
	URL             string  `gorm:"column:url;size:500;not null" json:"url"`
	IsPrimary       *bool   `gorm:"default:true" json:"is_primary"`
	SSLEnabled      *bool   `gorm:"column:ssl_enabled;default:true" json:"ssl_enabled"`
	SiteName        *string `gorm:"size:255" json:"site_name"`
	MetaTitle       *string `gorm:"size:255" json:"meta_title"`
	MetaDescription *string `json:"meta_description"`
	MetaKeywords    *string `json:"meta_keywords"`
}

func (Site) TableName() string { return "sites" }

// ChannelSetting is one key/value setting of a channel.
type ChannelSetting struct {
	ID           int64          `gorm:"primaryKey" json:"id"`
	ChannelID    int64          `gorm:"not null;uniqueIndex:channel_settings_unique,priority:1" json:"channel_id"`
	SettingKey   string         `gorm:"size:100;not null;uniqueIndex:channel_settings_unique,priority:2" json:"setting_key"`
	SettingValue datatypes.JSON `gorm:"type:jsonb;not null" json:"setting_value"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (ChannelSetting) TableName() string { return "channel_settings" }
