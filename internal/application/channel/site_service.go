package channel

import (
	"context"
	"errors"

	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/crud"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SiteConfig describes the sites table.
func SiteConfig() crud.Config {
	return crud.Config{
		ResourceName:  "Site",
		SortColumns:   persistence.SortColumns("id", "url", "created_at", "updated_at"),
		FilterColumns: persistence.SortColumns("is_primary", "ssl_enabled"),
		UniqueConstraints: []crud.Unique{{
			Fields:    []string{"channel_id", "url"},
			Message:   "Site with this URL already exists for this channel.",
			Composite: true,
		}},
	}
}

// SiteService manages the sites of a channel. Each channel has at most one
// primary site; a new site is primary unless created with is_primary false.
type SiteService struct {
	*crud.NestedService[models.Site]
	notify ChangeNotifier
}

// NewSiteService creates a SiteService. notify may be nil.
func NewSiteService(db *gorm.DB, notify ChangeNotifier) *SiteService {
	if notify == nil {
		notify = nopNotifier{}
	}
	parent := crud.Parent{Table: "channels", ResourceName: "Channel", ForeignKey: "channel_id"}
	return &SiteService{
		NestedService: crud.MustNewNested[models.Site](db, SiteConfig(), parent, siteHooks{}),
		notify:        notify,
	}
}

// CreateForParent creates a site for channelID.
func (s *SiteService) CreateForParent(ctx context.Context, channelID int64, values map[string]any) (*models.Site, error) {
	site, err := s.NestedService.CreateForParent(ctx, channelID, values)
	if err != nil {
		return nil, err
	}
	s.notify.ChannelChanged(ctx, channelID)
	return site, nil
}

// UpdateForParent updates a site of channelID.
func (s *SiteService) UpdateForParent(ctx context.Context, channelID, id int64, values map[string]any) (*models.Site, error) {
	site, err := s.NestedService.UpdateForParent(ctx, channelID, id, values)
	if err != nil {
		return nil, err
	}
	s.notify.ChannelChanged(ctx, channelID)
	return site, nil
}

// DeleteForParent deletes a site of channelID.
func (s *SiteService) DeleteForParent(ctx context.Context, channelID, id int64) error {
	if err := s.NestedService.DeleteForParent(ctx, channelID, id); err != nil {
		return err
	}
	s.notify.ChannelChanged(ctx, channelID)
	return nil
}

// GetPrimaryForChannel returns the channel's primary site, or the oldest
// site when none is flagged. It returns nil when the channel has no sites.
func (s *SiteService) GetPrimaryForChannel(ctx context.Context, channelID int64) (*models.Site, error) {
	var site models.Site
	err := s.Query(ctx).
		Scopes(s.ParentScope(channelID)).
		Order(clause.OrderByColumn{Column: s.Column("is_primary"), Desc: true}).
		Order(clause.OrderByColumn{Column: s.Column("id")}).
		Take(&site).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &site, nil
}

type siteHooks struct {
	crud.NoHooks[models.Site]
}

func (siteHooks) BeforeCreate(ctx context.Context, tx *gorm.DB, values map[string]any) error {
	if _, set := values["is_primary"]; set && !crud.Flag(values, "is_primary") {
		return nil
	}
	channelID, _ := crud.ID(values, "channel_id")
	return clearPrimary(ctx, tx, channelID, 0)
}

func (siteHooks) BeforeUpdate(ctx context.Context, tx *gorm.DB, values map[string]any, existing *models.Site) error {
	if crud.Flag(values, "is_primary") {
		return clearPrimary(ctx, tx, existing.ChannelID, existing.ID)
	}
	return nil
}

func clearPrimary(ctx context.Context, tx *gorm.DB, channelID, keepID int64) error {
	return tx.WithContext(ctx).Model(&models.Site{}).
		Where("channel_id = ? AND is_primary = ? AND id <> ?", channelID, true, keepID).
		Update("is_primary", false).Error
}
