package catalog

import (
	"context"
	"testing"

	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"github.com/cmlibra71/keenan-group-channels/tests/testutil"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedTree(t *testing.T, db *gorm.DB, channelID *int64) *models.CategoryTree {
	t.Helper()
	return testutil.Seed(t, db, &models.CategoryTree{Name: "Main", ChannelID: channelID})
}

func TestCategoryService_MaintainsPath(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewCategoryService(db)
	ctx := context.Background()
	tree := seedTree(t, db, nil)

	tools, err := svc.Create(ctx, map[string]any{"treeId": tree.ID, "name": "Tools"})
	require.NoError(t, err)
	assert.Equal(t, "tools", tools.Slug)
	assert.Equal(t, 0, tools.Depth)
	assert.Equal(t, pq.Int64Array{tools.ID}, tools.PathIDs)
	assert.Equal(t, pq.StringArray{"Tools"}, tools.PathNames)

	hand, err := svc.Create(ctx, map[string]any{"tree_id": tree.ID, "parent_id": tools.ID, "name": "Hand Tools"})
	require.NoError(t, err)
	assert.Equal(t, 1, hand.Depth)
	assert.Equal(t, pq.Int64Array{tools.ID, hand.ID}, hand.PathIDs)
	assert.Equal(t, pq.StringArray{"Tools", "Hand Tools"}, hand.PathNames)

	saws, err := svc.Create(ctx, map[string]any{"tree_id": tree.ID, "parent_id": hand.ID, "name": "Saws"})
	require.NoError(t, err)
	assert.Equal(t, 2, saws.Depth)

	// renaming the root rewrites every descendant
	_, err = svc.Update(ctx, tools.ID, map[string]any{"name": "Hardware"})
	require.NoError(t, err)
	saws, err = svc.GetByID(ctx, saws.ID)
	require.NoError(t, err)
	assert.Equal(t, pq.StringArray{"Hardware", "Hand Tools", "Saws"}, saws.PathNames)
	assert.Equal(t, pq.Int64Array{tools.ID, hand.ID, saws.ID}, saws.PathIDs)

	// moving a subtree to the root
	hand, err = svc.Update(ctx, hand.ID, map[string]any{"parent_id": nil})
	require.NoError(t, err)
	assert.Equal(t, 0, hand.Depth)
	assert.Equal(t, pq.Int64Array{hand.ID}, hand.PathIDs)
	saws, err = svc.GetByID(ctx, saws.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, saws.Depth)
	assert.Equal(t, pq.Int64Array{hand.ID, saws.ID}, saws.PathIDs)
}

func TestCategoryService_RejectsCycles(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewCategoryService(db)
	ctx := context.Background()
	tree := seedTree(t, db, nil)

	root, err := svc.Create(ctx, map[string]any{"tree_id": tree.ID, "name": "Root"})
	require.NoError(t, err)
	child, err := svc.Create(ctx, map[string]any{"tree_id": tree.ID, "parent_id": root.ID, "name": "Child"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, root.ID, map[string]any{"parent_id": root.ID})
	testutil.AssertAPIError(t, err, 422, "")

	_, err = svc.Update(ctx, root.ID, map[string]any{"parent_id": child.ID})
	apiErr := testutil.APIError(t, err)
	assert.Contains(t, apiErr.Errors["parent_id"], "descendants")

	root, err = svc.GetByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Nil(t, root.ParentID)
}

func TestCategoryService_ParentMustShareTree(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewCategoryService(db)
	ctx := context.Background()
	a := seedTree(t, db, nil)
	b := seedTree(t, db, nil)

	parent, err := svc.Create(ctx, map[string]any{"tree_id": a.ID, "name": "Root"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, map[string]any{"tree_id": b.ID, "parent_id": parent.ID, "name": "Stray"})
	apiErr := testutil.APIError(t, err)
	assert.Equal(t, 422, apiErr.Status)
	assert.Equal(t, "Parent category must belong to the same tree.", apiErr.Errors["parent_id"])
}

func TestCategoryService_SlugUniquePerTree(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewCategoryService(db)
	ctx := context.Background()
	a := seedTree(t, db, nil)
	b := seedTree(t, db, nil)

	_, err := svc.Create(ctx, map[string]any{"tree_id": a.ID, "name": "Tools"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, map[string]any{"tree_id": a.ID, "name": "Tools"})
	testutil.AssertAPIError(t, err, 409, "Category slug already exists in this tree.")
	_, err = svc.Create(ctx, map[string]any{"tree_id": b.ID, "name": "Tools"})
	assert.NoError(t, err)
}

func TestCategoryService_StorefrontQueries(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewCategoryService(db)
	ctx := context.Background()

	retail := testutil.SeedChannel(t, db, "Retail")
	wholesale := testutil.SeedChannel(t, db, "Wholesale")
	shared := seedTree(t, db, nil)
	own := seedTree(t, db, &retail.ID)
	other := seedTree(t, db, &wholesale.ID)

	sharedTools, err := svc.Create(ctx, map[string]any{"tree_id": shared.ID, "name": "Tools", "sort_order": 2})
	require.NoError(t, err)
	ownTools, err := svc.Create(ctx, map[string]any{"tree_id": own.ID, "name": "Tools", "sort_order": 1})
	require.NoError(t, err)
	_, err = svc.Create(ctx, map[string]any{"tree_id": other.ID, "name": "Bulk"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, map[string]any{"tree_id": own.ID, "name": "Hidden", "is_visible": false})
	require.NoError(t, err)
	saws, err := svc.Create(ctx, map[string]any{"tree_id": own.ID, "parent_id": ownTools.ID, "name": "Saws", "sort_order": 3})
	require.NoError(t, err)

	visible, err := svc.ListVisible(ctx, retail.ID)
	require.NoError(t, err)
	names := make([]string, len(visible))
	for i, c := range visible {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"Tools", "Tools", "Saws"}, names)
	assert.Equal(t, ownTools.ID, visible[0].ID)

	found, err := svc.GetBySlug(ctx, "tools", retail.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, ownTools.ID, found.ID)

	found, err = svc.GetBySlug(ctx, "tools", wholesale.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, sharedTools.ID, found.ID)

	found, err = svc.GetBySlug(ctx, "bulk", retail.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	children, err := svc.GetChildren(ctx, ownTools.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, saws.ID, children[0].ID)

	crumbs, err := svc.GetBreadcrumbs(ctx, saws.PathIDs)
	require.NoError(t, err)
	require.Len(t, crumbs, 2)
	assert.Equal(t, "Tools", crumbs[0].Name)
	assert.Equal(t, "Saws", crumbs[1].Name)

	empty, err := svc.GetBreadcrumbs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCategoryService_Stats(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewCategoryService(db)
	brands := NewBrandService(db)
	ctx := context.Background()
	tree := seedTree(t, db, nil)

	cat, err := svc.Create(ctx, map[string]any{"tree_id": tree.ID, "name": "Tools"})
	require.NoError(t, err)
	acme, err := brands.Create(ctx, map[string]any{"name": "Acme"})
	require.NoError(t, err)

	hammer := testutil.SeedProduct(t, db, "hammer", "12.50")
	saw := testutil.SeedProduct(t, db, "saw", "30")
	gone := testutil.SeedProduct(t, db, "gone", "1")
	require.NoError(t, db.Model(hammer).Update("brand_id", acme.ID).Error)
	require.NoError(t, db.Model(gone).Update("is_deleted", true).Error)
	for _, p := range []*models.Product{hammer, saw, gone} {
		testutil.Seed(t, db, &models.ProductCategory{ProductID: p.ID, CategoryID: cat.ID})
	}

	stats, err := svc.GetCategoryStats(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.ProductCount)
	assert.Equal(t, "12.5", stats.MinPrice.String())
	assert.Equal(t, "30", stats.MaxPrice.String())
	assert.Equal(t, []BrandSummary{{ID: acme.ID, Name: "Acme", Slug: "acme"}}, stats.Brands)

	err = svc.Delete(ctx, cat.ID)
	testutil.AssertAPIError(t, err, 409, "Cannot delete category because it has 3 product(s) assigned.")
}
