package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/cmlibra71/keenan-group-channels/internal/application/catalog"
	"github.com/cmlibra71/keenan-group-channels/internal/application/channel"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"github.com/cmlibra71/keenan-group-channels/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func mountResource[T any](r gin.IRoutes, path string, h *ResourceHandler[T]) {
	r.GET(path, h.List)
	r.POST(path, h.Create)
	r.GET(path+"/:id", h.Get)
	r.PUT(path+"/:id", h.Update)
	r.DELETE(path+"/:id", h.Delete)
}

func mountNested[T any](r gin.IRoutes, path string, h *NestedHandler[T]) {
	r.GET(path, h.List)
	r.POST(path, h.Create)
	r.GET(path+"/:child_id", h.Get)
	r.PUT(path+"/:child_id", h.Update)
	r.DELETE(path+"/:child_id", h.Delete)
}

func newBrandRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	r := gin.New()
	mountResource(r, "/brands", NewResourceHandler[models.Brand](catalog.NewBrandService(db)))
	return r, db
}

func TestResourceHandler_CRUD(t *testing.T) {
	r, _ := newBrandRouter(t)

	w := request(t, r, http.MethodPost, "/brands", map[string]any{"name": "Acme Tools"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeData[models.Brand](t, w)
	assert.Equal(t, "acme-tools", created.Slug)
	path := fmt.Sprintf("/brands/%d", created.ID)

	w = request(t, r, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Acme Tools", decodeData[models.Brand](t, w).Name)

	w = request(t, r, http.MethodPut, path, map[string]any{"pageTitle": "Acme"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeData[models.Brand](t, w)
	require.NotNil(t, updated.PageTitle)
	assert.Equal(t, "Acme", *updated.PageTitle)

	w = request(t, r, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = request(t, r, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	problem := decodeProblem(t, w)
	assert.Equal(t, fmt.Sprintf("Brand with ID %d does not exist.", created.ID), problem.Detail)
	assert.Equal(t, "Not Found", problem.Title)
}

func TestResourceHandler_ListPaginates(t *testing.T) {
	r, db := newBrandRouter(t)
	for _, name := range []string{"Bosch", "Acme", "Makita"} {
		testutil.Seed(t, db, &models.Brand{Name: name, Slug: name})
	}

	w := request(t, r, http.MethodGet, "/brands?sort=name&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	brands := decodeData[[]models.Brand](t, w)
	require.Len(t, brands, 2)
	assert.Equal(t, "Acme", brands[0].Name)
	assert.Equal(t, "Bosch", brands[1].Name)

	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(3), env.Meta.Pagination.Total)
	assert.Equal(t, 2, env.Meta.Pagination.TotalPages)
	assert.Equal(t, 1, env.Meta.Pagination.Page)

	w = request(t, r, http.MethodGet, "/brands?page=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(decodeEnvelope(t, w).Data))
}

func TestResourceHandler_Conflict(t *testing.T) {
	r, db := newBrandRouter(t)
	testutil.Seed(t, db, &models.Brand{Name: "Acme", Slug: "acme"})

	w := request(t, r, http.MethodPost, "/brands", map[string]any{"name": "Acme"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Brand name already exists.", decodeProblem(t, w).Detail)
}

func TestResourceHandler_GetWithInclude(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ch := testutil.SeedChannel(t, db, "Retail")
	testutil.Seed(t, db, &models.Site{ChannelID: ch.ID, URL: "https://retail.example"})

	r := gin.New()
	mountResource(r, "/channels", NewResourceHandler[models.Channel](channel.NewChannelService(db, nil)))

	w := request(t, r, http.MethodGet, fmt.Sprintf("/channels/%d?include=sites", ch.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decodeData[models.Channel](t, w)
	require.Len(t, got.Sites, 1)
	assert.Equal(t, "https://retail.example", got.Sites[0].URL)

	w = request(t, r, http.MethodGet, fmt.Sprintf("/channels/%d", ch.ID), nil)
	assert.Empty(t, decodeData[models.Channel](t, w).Sites)
}

func TestNestedHandler_ScopesToParent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	retail := testutil.SeedChannel(t, db, "Retail")
	trade := testutil.SeedChannel(t, db, "Trade")
	site := testutil.Seed(t, db, &models.Site{ChannelID: retail.ID, URL: "https://retail.example"})

	r := gin.New()
	mountNested(r, "/channels/:id/sites", NewNestedHandler[models.Site](channel.NewSiteService(db, nil)))

	w := request(t, r, http.MethodGet, fmt.Sprintf("/channels/%d/sites", retail.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decodeData[[]models.Site](t, w), 1)

	w = request(t, r, http.MethodGet, fmt.Sprintf("/channels/%d/sites/%d", trade.ID, site.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = request(t, r, http.MethodGet, "/channels/999/sites", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Channel with ID 999 does not exist.", decodeProblem(t, w).Detail)

	w = request(t, r, http.MethodPost, fmt.Sprintf("/channels/%d/sites", trade.ID),
		map[string]any{"url": "https://trade.example", "channel_id": retail.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, trade.ID, decodeData[models.Site](t, w).ChannelID)

	w = request(t, r, http.MethodDelete, fmt.Sprintf("/channels/%d/sites/%d", retail.ID, site.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = request(t, r, http.MethodDelete, fmt.Sprintf("/channels/%d/sites/abc", retail.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
