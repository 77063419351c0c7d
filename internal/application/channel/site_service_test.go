package channel

import (
	"context"
	"testing"

	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"github.com/cmlibra71/keenan-group-channels/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteService_SinglePrimary(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	rec := &recordingNotifier{}
	svc := NewSiteService(db, rec)
	ctx := context.Background()
	ch := testutil.SeedChannel(t, db, "Retail")

	first, err := svc.CreateForParent(ctx, ch.ID, map[string]any{"url": "https://a.example.com"})
	require.NoError(t, err)
	assert.True(t, *first.IsPrimary)

	second, err := svc.CreateForParent(ctx, ch.ID, map[string]any{"url": "https://b.example.com"})
	require.NoError(t, err)
	assert.True(t, *second.IsPrimary)

	first, err = svc.GetByIDForParent(ctx, ch.ID, first.ID)
	require.NoError(t, err)
	assert.False(t, *first.IsPrimary)

	secondary, err := svc.CreateForParent(ctx, ch.ID, map[string]any{"url": "https://c.example.com", "isPrimary": false})
	require.NoError(t, err)
	assert.False(t, *secondary.IsPrimary)

	primary, err := svc.GetPrimaryForChannel(ctx, ch.ID)
	require.NoError(t, err)
	require.NotNil(t, primary)
	assert.Equal(t, second.ID, primary.ID)

	_, err = svc.UpdateForParent(ctx, ch.ID, first.ID, map[string]any{"is_primary": true})
	require.NoError(t, err)
	primary, err = svc.GetPrimaryForChannel(ctx, ch.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, primary.ID)

	assert.Len(t, rec.changed, 4)
}

func TestSiteService_PrimaryIsPerChannel(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewSiteService(db, nil)
	ctx := context.Background()
	a := testutil.SeedChannel(t, db, "A")
	b := testutil.SeedChannel(t, db, "B")

	siteA, err := svc.CreateForParent(ctx, a.ID, map[string]any{"url": "https://a.example.com"})
	require.NoError(t, err)
	_, err = svc.CreateForParent(ctx, b.ID, map[string]any{"url": "https://b.example.com"})
	require.NoError(t, err)

	siteA, err = svc.GetByID(ctx, siteA.ID)
	require.NoError(t, err)
	assert.True(t, *siteA.IsPrimary)
}

func TestSiteService_URLUniquePerChannel(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewSiteService(db, nil)
	ctx := context.Background()
	a := testutil.SeedChannel(t, db, "A")
	b := testutil.SeedChannel(t, db, "B")

	_, err := svc.CreateForParent(ctx, a.ID, map[string]any{"url": "https://shop.example.com"})
	require.NoError(t, err)

	_, err = svc.CreateForParent(ctx, a.ID, map[string]any{"url": "https://shop.example.com"})
	testutil.AssertAPIError(t, err, 409, "Site with this URL already exists for this channel.")

	_, err = svc.CreateForParent(ctx, b.ID, map[string]any{"url": "https://shop.example.com"})
	assert.NoError(t, err)

	_, err = svc.CreateForParent(ctx, 404, map[string]any{"url": "https://x.example.com"})
	testutil.AssertAPIError(t, err, 404, "Channel with ID 404 does not exist.")
}

func TestSiteService_GetPrimaryForChannel(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewSiteService(db, nil)
	ctx := context.Background()
	ch := testutil.SeedChannel(t, db, "Retail")

	site, err := svc.GetPrimaryForChannel(ctx, ch.ID)
	require.NoError(t, err)
	assert.Nil(t, site)

	older := testutil.Seed(t, db, &models.Site{ChannelID: ch.ID, URL: "https://old.example.com", IsPrimary: testutil.Ptr(false)})
	testutil.Seed(t, db, &models.Site{ChannelID: ch.ID, URL: "https://new.example.com", IsPrimary: testutil.Ptr(false)})

	site, err = svc.GetPrimaryForChannel(ctx, ch.ID)
	require.NoError(t, err)
	require.NotNil(t, site)
	assert.Equal(t, older.ID, site.ID)
}
