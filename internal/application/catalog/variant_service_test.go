package catalog

import (
	"context"
	"testing"

	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"github.com/cmlibra71/keenan-group-channels/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductVariantService_DeleteDependencies(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewProductVariantService(db)
	ctx := context.Background()
	p := testutil.SeedProduct(t, db, "saw", "20")

	v, err := svc.CreateForParent(ctx, p.ID, map[string]any{"sku": "SAW-S", "price": "18.50"})
	require.NoError(t, err)
	assert.Equal(t, "18.5", v.Price.String())

	level := testutil.Seed(t, db, &models.InventoryLevel{VariantID: v.ID, LocationID: 1, Available: 4})
	err = svc.DeleteForParent(ctx, p.ID, v.ID)
	testutil.AssertAPIError(t, err, 409, "Cannot delete variant because it has 1 inventory level(s).")

	require.NoError(t, db.Delete(level).Error)
	testutil.Seed(t, db, &models.PriceListRecord{PriceListID: 1, VariantID: v.ID})
	testutil.Seed(t, db, &models.PriceListRecord{PriceListID: 2, VariantID: v.ID})
	err = svc.DeleteForParent(ctx, p.ID, v.ID)
	testutil.AssertAPIError(t, err, 409, "Cannot delete variant because it has 2 price list record(s).")
}

func TestProductVariantService_SKUUnique(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewProductVariantService(db)
	ctx := context.Background()
	saw := testutil.SeedProduct(t, db, "saw", "20")
	drill := testutil.SeedProduct(t, db, "drill", "20")

	_, err := svc.CreateForParent(ctx, saw.ID, map[string]any{"sku": "TOOL-1"})
	require.NoError(t, err)
	_, err = svc.CreateForParent(ctx, drill.ID, map[string]any{"sku": "TOOL-1"})
	testutil.AssertAPIError(t, err, 409, "Variant SKU is already in use.")
}
