package crud

import (
	"context"
	"net/url"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"github.com/cmlibra71/keenan-group-channels/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_PostgresSQL(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	products, err := New[models.Product](mockDB.DB, productConfig(), nil)
	require.NoError(t, err)

	mockDB.Mock.ExpectQuery(`SELECT count\(\*\) FROM "products" WHERE "products"."name" LIKE \$1 ESCAPE '\\' AND "products"."price" >= \$2 AND "products"."is_deleted" = \$3`).
		WithArgs(`%50\%%`, sqlmock.AnyArg(), false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mockDB.Mock.ExpectQuery(`SELECT \* FROM "products" WHERE .* ORDER BY "products"."price" DESC,"products"."id" DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}).AddRow(3, "Drill 50%", "4.25"))

	opts := shared.ListOptions{
		Sort:      "price",
		Direction: shared.SortDesc,
		Filters: map[string]shared.FilterValue{
			"name":  {Type: shared.FilterLike, Value: "50%"},
			"price": {Type: shared.FilterMin, Value: "1"},
		},
	}
	page, err := products.List(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "4.25", page.Data[0].Price.String())
	assert.Equal(t, int64(1), page.Pagination.Total)

	mockDB.ExpectationsWereMet(t)
}

func TestForeignKeys_OneQueryPerTable(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	cfg := Config{
		ResourceName: "Cart",
		ForeignKeys: []ForeignKey{
			{Table: "channels", ResourceName: "Channel", Field: "channel_id"},
			{Table: "customers", ResourceName: "Customer", Field: "customer_id", Optional: true},
		},
	}
	carts, err := New[models.Cart](mockDB.DB, cfg, nil)
	require.NoError(t, err)

	mockDB.Mock.ExpectQuery(`SELECT "id" FROM "channels" WHERE "id" = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mockDB.Mock.ExpectQuery(`SELECT "id" FROM "customers" WHERE "id" = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err = carts.validateForeignKeys(context.Background(), mockDB.DB, map[string]any{
		"channel_id":  float64(1),
		"customer_id": "5",
		"account_id":  nil,
	})
	apiErr := apiError(t, err)
	assert.Equal(t, map[string]string{"customer_id": "Customer with ID 5 does not exist."}, apiErr.Errors)

	mockDB.ExpectationsWereMet(t)
}

func TestUnique_CompositeSkipsWhenFieldMissing(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	cfg := Config{
		ResourceName: "Cart Item",
		UniqueConstraints: []Unique{{
			Fields:    []string{"cart_id", "product_id", "variant_id"},
			Message:   "This product/variant is already in the cart.",
			Composite: true,
		}},
	}
	items, err := New[models.CartItem](mockDB.DB, cfg, nil)
	require.NoError(t, err)

	// no query expected
	require.NoError(t, items.validateUnique(context.Background(), mockDB.DB, map[string]any{"cart_id": 1, "product_id": 2}, 0))

	mockDB.Mock.ExpectQuery(`SELECT count\(\*\) FROM "cart_items" WHERE "cart_items"."cart_id" = \$1 AND "cart_items"."product_id" = \$2 AND "cart_items"."variant_id" IS NULL AND "cart_items"."id" <> \$3`).
		WithArgs(int64(1), int64(2), int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err = items.validateUnique(context.Background(), mockDB.DB, map[string]any{"cart_id": 1, "product_id": 2, "variant_id": nil}, 9)
	assert.Equal(t, "This product/variant is already in the cart.", apiError(t, err).Detail)

	mockDB.ExpectationsWereMet(t)
}

func TestList_FiltersFromQueryString(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	products := newProducts(t, db)
	ctx := context.Background()
	for _, p := range []map[string]any{
		{"name": "Claw hammer", "sku": "A", "price": "10"},
		{"name": "Panel saw", "sku": "B", "price": "30"},
		{"name": "Drill press", "sku": "C", "price": "300"},
	} {
		_, err := products.Create(ctx, p)
		require.NoError(t, err)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"name:like=saw", []string{"Panel saw"}},
		{"name:like=%25", nil},
		{"price:min=25", []string{"Panel saw", "Drill press"}},
		{"price:min=20&price:max=30", []string{"Panel saw"}},
		{"id:in=1,3", []string{"Claw hammer", "Drill press"}},
		{"price:max=30&sort=price&direction=desc", []string{"Panel saw", "Claw hammer"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			page, err := products.List(ctx, shared.ParseListQuery(q))
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, page.Data)
			} else {
				assert.Equal(t, tt.want, names(page.Data))
			}
			assert.Equal(t, int64(len(tt.want)), page.Pagination.Total)
		})
	}
}

func TestSliceValues(t *testing.T) {
	v, ok := sliceValues([]string{"a", "b"})
	assert.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, v)

	_, ok = sliceValues("a")
	assert.False(t, ok)
	_, ok = sliceValues([]byte("ab"))
	assert.False(t, ok)
	_, ok = sliceValues(nil)
	assert.False(t, ok)
}
