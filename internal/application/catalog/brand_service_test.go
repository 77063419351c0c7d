package catalog

import (
	"context"
	"testing"

	"github.com/cmlibra71/keenan-group-channels/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrandService_CreateDerivesSlug(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewBrandService(db)
	ctx := context.Background()

	brand, err := svc.Create(ctx, map[string]any{"name": "Chef's Kitchen"})
	require.NoError(t, err)
	assert.Equal(t, "chef-s-kitchen", brand.Slug)

	custom, err := svc.Create(ctx, map[string]any{"name": "Acme", "slug": "acme-tools"})
	require.NoError(t, err)
	assert.Equal(t, "acme-tools", custom.Slug)
}

func TestBrandService_Unique(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewBrandService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, map[string]any{"name": "Acme"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, map[string]any{"name": "Acme"})
	testutil.AssertAPIError(t, err, 409, "Brand name already exists.")

	// same derived slug, different name
	_, err = svc.Create(ctx, map[string]any{"name": "ACME!"})
	testutil.AssertAPIError(t, err, 409, "Brand slug already exists.")
}

func TestBrandService_DeleteBlockedByProducts(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewBrandService(db)
	ctx := context.Background()

	brand, err := svc.Create(ctx, map[string]any{"name": "Acme"})
	require.NoError(t, err)
	p := testutil.SeedProduct(t, db, "hammer", "10")
	require.NoError(t, db.Model(p).Update("brand_id", brand.ID).Error)

	err = svc.Delete(ctx, brand.ID)
	testutil.AssertAPIError(t, err, 409, "Cannot delete brand because it has 1 product(s) associated with it.")

	require.NoError(t, db.Model(p).Update("brand_id", nil).Error)
	require.NoError(t, svc.Delete(ctx, brand.ID))
}
