package channel

import (
	"context"
	"sync"
	"testing"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"github.com/cmlibra71/keenan-group-channels/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu      sync.Mutex
	changed []int64
}

func (r *recordingNotifier) ChannelChanged(_ context.Context, id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed = append(r.changed, id)
}

func TestChannelService_SingleDefault(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewChannelService(db, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, map[string]any{"name": "Retail", "isDefault": true})
	require.NoError(t, err)
	assert.True(t, *first.IsDefault)

	second, err := svc.Create(ctx, map[string]any{"name": "Wholesale", "is_default": true})
	require.NoError(t, err)
	assert.True(t, *second.IsDefault)

	first, err = svc.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, *first.IsDefault)

	_, err = svc.Update(ctx, first.ID, map[string]any{"is_default": "true"})
	require.NoError(t, err)

	n, err := svc.Count(ctx, func(q *gorm.DB) *gorm.DB { return q.Where("is_default = ?", true) })
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestChannelService_NotifiesOnChange(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	rec := &recordingNotifier{}
	svc := NewChannelService(db, rec)
	ctx := context.Background()

	ch := testutil.SeedChannel(t, db, "Retail")

	_, err := svc.Update(ctx, ch.ID, map[string]any{"name": "Retail AU"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, ch.ID))

	_, err = svc.Update(ctx, 999, map[string]any{"name": "x"})
	testutil.AssertAPIError(t, err, 404, "Channel with ID 999 does not exist.")

	assert.Equal(t, []int64{ch.ID, ch.ID}, rec.changed)
}

func TestChannelService_DeleteBlockedByAssignments(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewChannelService(db, nil)

	ch := testutil.SeedChannel(t, db, "Retail")
	p1 := testutil.SeedProduct(t, db, "hammer", "10")
	p2 := testutil.SeedProduct(t, db, "saw", "12")
	testutil.Seed(t, db, &models.ProductChannelAssignment{ProductID: p1.ID, ChannelID: ch.ID})
	testutil.Seed(t, db, &models.ProductChannelAssignment{ProductID: p2.ID, ChannelID: ch.ID})

	err := svc.Delete(context.Background(), ch.ID)
	testutil.AssertAPIError(t, err, 409, "Cannot delete channel because it has 2 product(s) assigned.")
}

func TestChannelService_ListWithSites(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewChannelService(db, nil)

	retail := testutil.SeedChannel(t, db, "Retail")
	testutil.SeedChannel(t, db, "Trade")
	testutil.Seed(t, db, &models.Site{ChannelID: retail.ID, URL: "https://shop.example.com"})

	opts := shared.DefaultListOptions()
	opts.Includes = []string{"sites", "unknown"}
	opts.Filters = map[string]shared.FilterValue{"name": {Type: shared.FilterLike, Value: "Ret"}}
	page, err := svc.List(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Len(t, page.Data[0].Sites, 1)
	assert.Equal(t, "https://shop.example.com", page.Data[0].Sites[0].URL)
}

func TestChannelService_ListActive(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewChannelService(db, nil)

	a := testutil.SeedChannel(t, db, "A")
	testutil.Seed(t, db, &models.Channel{Name: "Old", Type: "storefront", Status: "inactive"})
	b := testutil.SeedChannel(t, db, "B")

	active, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, a.ID, active[0].ID)
	assert.Equal(t, b.ID, active[1].ID)
}
