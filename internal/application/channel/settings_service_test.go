package channel

import (
	"context"
	"testing"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsService_UpsertAndGet(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewSettingsService(db)
	ctx := context.Background()
	ch := testutil.SeedChannel(t, db, "Retail")

	created, err := svc.Upsert(ctx, ch.ID, "theme", map[string]any{"primary": "#112233"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"primary":"#112233"}`, string(created.SettingValue))

	updated, err := svc.Upsert(ctx, ch.ID, "theme", map[string]any{"primary": "#000000"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	got, err := svc.GetByKey(ctx, ch.ID, "theme")
	require.NoError(t, err)
	assert.JSONEq(t, `{"primary":"#000000"}`, string(got.SettingValue))
}

func TestSettingsService_Errors(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewSettingsService(db)
	ctx := context.Background()
	ch := testutil.SeedChannel(t, db, "Retail")

	_, err := svc.GetByKey(ctx, ch.ID, "")
	testutil.AssertAPIError(t, err, 400, "Setting key is required.")

	_, err = svc.Upsert(ctx, ch.ID, "", 1)
	testutil.AssertAPIError(t, err, 400, "Setting key is required.")

	testutil.AssertAPIError(t, svc.DeleteByKey(ctx, ch.ID, ""), 400, "Setting key is required.")

	_, err = svc.GetByKey(ctx, ch.ID, "missing")
	testutil.AssertAPIError(t, err, 404, "Channel Setting with ID missing does not exist.")

	_, err = svc.GetByKey(ctx, 999, "theme")
	testutil.AssertAPIError(t, err, 404, "Channel with ID 999 does not exist.")

	_, err = svc.Upsert(ctx, 999, "theme", "dark")
	testutil.AssertAPIError(t, err, 404, "Channel with ID 999 does not exist.")
}

func TestSettingsService_ListAndDelete(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewSettingsService(db)
	ctx := context.Background()
	ch := testutil.SeedChannel(t, db, "Retail")
	other := testutil.SeedChannel(t, db, "Trade")

	for _, key := range []string{"logo", "currency", "theme"} {
		_, err := svc.Upsert(ctx, ch.ID, key, key)
		require.NoError(t, err)
	}
	_, err := svc.Upsert(ctx, other.ID, "logo", "x")
	require.NoError(t, err)

	opts := shared.DefaultListOptions()
	opts.Direction = shared.SortDesc
	opts.Sort = "id"
	page, err := svc.ListForChannel(ctx, ch.ID, opts)
	require.NoError(t, err)
	require.Len(t, page.Data, 3)
	assert.Equal(t, "theme", page.Data[0].SettingKey)
	assert.Equal(t, "currency", page.Data[2].SettingKey)

	require.NoError(t, svc.DeleteByKey(ctx, ch.ID, "logo"))
	testutil.AssertAPIError(t, svc.DeleteByKey(ctx, ch.ID, "logo"), 404, "")

	_, err = svc.GetByKey(ctx, other.ID, "logo")
	assert.NoError(t, err)
}
