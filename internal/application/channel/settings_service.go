package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/crud"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errSettingKeyRequired = shared.NewBadRequest("Setting key is required.", nil)

// SettingsService stores free-form JSON settings per channel, addressed by
// key rather than id.
type SettingsService struct {
	rows *crud.NestedService[models.ChannelSetting]
}

// NewSettingsService creates a SettingsService
func NewSettingsService(db *gorm.DB) *SettingsService {
	cfg := crud.Config{
		ResourceName: "Channel Setting",
		DefaultSort:  "setting_key",
		SortColumns:  map[string]string{"setting_key": "setting_key"},
	}
	parent := crud.Parent{Table: "channels", ResourceName: "Channel", ForeignKey: "channel_id"}
	return &SettingsService{rows: crud.MustNewNested[models.ChannelSetting](db, cfg, parent, nil)}
}

// ListForChannel pages through a channel's settings ordered by key.
func (s *SettingsService) ListForChannel(ctx context.Context, channelID int64, opts shared.ListOptions) (*shared.Page[models.ChannelSetting], error) {
	opts.Sort = "setting_key"
	opts.Filters = nil
	return s.rows.ListForParent(ctx, channelID, opts)
}

// GetByKey returns one setting of a channel.
func (s *SettingsService) GetByKey(ctx context.Context, channelID int64, key string) (*models.ChannelSetting, error) {
	if key == "" {
		return nil, errSettingKeyRequired
	}
	db := s.rows.DB(ctx)
	if err := s.rows.ValidateParent(ctx, db, channelID); err != nil {
		return nil, err
	}
	return s.find(db, channelID, key)
}

// Upsert stores value under key, replacing any previous value.
func (s *SettingsService) Upsert(ctx context.Context, channelID int64, key string, value any) (*models.ChannelSetting, error) {
	if key == "" {
		return nil, errSettingKeyRequired
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, shared.NewBadRequest("Setting value must be valid JSON.", nil)
	}

	var saved *models.ChannelSetting
	err = s.rows.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.rows.ValidateParent(ctx, tx, channelID); err != nil {
			return err
		}
		now := s.rows.Now()
		row := models.ChannelSetting{
			ChannelID:    channelID,
			SettingKey:   key,
			SettingValue: datatypes.JSON(raw),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "channel_id"}, {Name: "setting_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("upsert channel setting %q: %w", key, err)
		}
		saved, err = s.find(tx, channelID, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// DeleteByKey removes a setting.
func (s *SettingsService) DeleteByKey(ctx context.Context, channelID int64, key string) error {
	if key == "" {
		return errSettingKeyRequired
	}
	return s.rows.Transaction(ctx, func(tx *gorm.DB) error {
		row, err := s.find(tx, channelID, key)
		if err != nil {
			return err
		}
		return tx.Delete(&models.ChannelSetting{}, row.ID).Error
	})
}

func (s *SettingsService) find(db *gorm.DB, channelID int64, key string) (*models.ChannelSetting, error) {
	var row models.ChannelSetting
	err := db.Where("channel_id = ? AND setting_key = ?", channelID, key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewNotFound("Channel Setting", key)
	}
	if err != nil {
		return nil, fmt.Errorf("get channel setting %q: %w", key, err)
	}
	return &row, nil
}
