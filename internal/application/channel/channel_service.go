// Package channel manages sales channels, the sites they are served on and
// per-channel settings.
package channel

import (
	"context"

	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/crud"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChangeNotifier is told after a channel or one of its sites changes, so
// cached storefront configuration can be dropped.
type ChangeNotifier interface {
	ChannelChanged(ctx context.Context, channelID int64)
}

type nopNotifier struct{}

func (nopNotifier) ChannelChanged(context.Context, int64) {}

// ChannelConfig describes the channels table.
func ChannelConfig() crud.Config {
	return crud.Config{
		ResourceName:  "Channel",
		DefaultSort:   "id",
		SortColumns:   persistence.SortColumns("id", "name", "created_at", "updated_at"),
		FilterColumns: persistence.SortColumns("status", "type", "is_default", "name"),
		Dependencies: []crud.Dependency{{
			Table:        "product_channel_assignments",
			ForeignKey:   "channel_id",
			ResourceName: "product assignment",
			Message:      "Cannot delete channel because it has {count} product(s) assigned.",
		}},
		Includes: []crud.Include{{Name: "sites", Association: "Sites"}},
	}
}

// ChannelService manages channels. At most one channel is the default:
// marking a channel default clears the flag everywhere else.
type ChannelService struct {
	*crud.Service[models.Channel]
	notify ChangeNotifier
}

// NewChannelService creates a ChannelService. notify may be nil.
func NewChannelService(db *gorm.DB, notify ChangeNotifier) *ChannelService {
	if notify == nil {
		notify = nopNotifier{}
	}
	return &ChannelService{
		Service: crud.MustNew[models.Channel](db, ChannelConfig(), channelHooks{}),
		notify:  notify,
	}
}

// Update updates a channel and drops its cached configuration.
func (s *ChannelService) Update(ctx context.Context, id int64, values map[string]any) (*models.Channel, error) {
	ch, err := s.Service.Update(ctx, id, values)
	if err != nil {
		return nil, err
	}
	s.notify.ChannelChanged(ctx, id)
	return ch, nil
}

// Delete deletes a channel and drops its cached configuration.
func (s *ChannelService) Delete(ctx context.Context, id int64) error {
	if err := s.Service.Delete(ctx, id); err != nil {
		return err
	}
	s.notify.ChannelChanged(ctx, id)
	return nil
}

// ListActive returns every active channel ordered by id.
func (s *ChannelService) ListActive(ctx context.Context) ([]models.Channel, error) {
	var channels []models.Channel
	err := s.Query(ctx).
		Where(clause.Eq{Column: s.Column("status"), Value: "active"}).
		Order(clause.OrderByColumn{Column: s.Column("id")}).
		Find(&channels).Error
	return channels, err
}

type channelHooks struct {
	crud.NoHooks[models.Channel]
}

func (channelHooks) BeforeCreate(ctx context.Context, tx *gorm.DB, values map[string]any) error {
	if crud.Flag(values, "is_default") {
		return clearDefault(ctx, tx, 0)
	}
	return nil
}

func (channelHooks) BeforeUpdate(ctx context.Context, tx *gorm.DB, values map[string]any, existing *models.Channel) error {
	if crud.Flag(values, "is_default") {
		return clearDefault(ctx, tx, existing.ID)
	}
	return nil
}

func clearDefault(ctx context.Context, tx *gorm.DB, keepID int64) error {
	return tx.WithContext(ctx).Model(&models.Channel{}).
		Where("is_default = ? AND id <> ?", true, keepID).
		Update("is_default", false).Error
}
