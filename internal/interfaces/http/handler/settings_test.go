package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/cmlibra71/keenan-group-channels/internal/application/channel"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"github.com/cmlibra71/keenan-group-channels/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsHandler(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ch := testutil.SeedChannel(t, db, "Retail")

	h := NewSettingsHandler(channel.NewSettingsService(db))
	r := gin.New()
	r.GET("/channels/:id/settings", h.List)
	r.GET("/channels/:id/settings/:key", h.Get)
	r.PUT("/channels/:id/settings/:key", h.Put)
	r.DELETE("/channels/:id/settings/:key", h.Delete)

	base := fmt.Sprintf("/channels/%d/settings", ch.ID)

	w := request(t, r, http.MethodPut, base+"/theme", map[string]any{"value": map[string]any{"primary": "#003366"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	saved := decodeData[models.ChannelSetting](t, w)
	assert.Equal(t, "theme", saved.SettingKey)
	assert.JSONEq(t, `{"primary":"#003366"}`, string(saved.SettingValue))

	w = request(t, r, http.MethodPut, base+"/theme", map[string]any{"value": "dark"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `"dark"`, string(decodeData[models.ChannelSetting](t, w).SettingValue))

	w = request(t, r, http.MethodPut, base+"/analytics", map[string]any{"value": true})
	require.Equal(t, http.StatusOK, w.Code)

	w = request(t, r, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeData[[]models.ChannelSetting](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, "analytics", list[0].SettingKey)
	assert.Equal(t, int64(2), decodeEnvelope(t, w).Meta.Pagination.Total)

	w = request(t, r, http.MethodGet, base+"/theme", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = request(t, r, http.MethodDelete, base+"/theme", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = request(t, r, http.MethodGet, base+"/theme", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = request(t, r, http.MethodPut, "/channels/999/settings/theme", map[string]any{"value": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Channel with ID 999 does not exist.", decodeProblem(t, w).Detail)
}
