package handler

import (
	"net/http"

	"github.com/cmlibra71/keenan-group-channels/internal/application/channel"
	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ParamSettingKey names the setting in /channels/:id/settings/:key.
const ParamSettingKey = "key"

// SettingsHandler serves the key/value settings of a channel.
type SettingsHandler struct {
	BaseHandler
	settings *channel.SettingsService
}

// NewSettingsHandler creates a SettingsHandler
func NewSettingsHandler(settings *channel.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// List godoc
// @ID           listChannelSettings
// @Summary      List channel settings
// @Tags         channels
// @Produce      json
// @Param        id    path   int  true   "Channel ID"
// @Param        page  query  int  false  "Page number"
// @Param        limit query  int  false  "Page size (max 250)"
// @Success      200 {object} dto.ListResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     APIKeyAuth
// @Router       /api/v3/channels/{id}/settings [get]
func (h *SettingsHandler) List(c *gin.Context) {
	channelID, ok := h.parseID(c, ParamID)
	if !ok {
		return
	}
	page, err := h.settings.ListForChannel(c.Request.Context(), channelID, shared.ParseListQuery(c.Request.URL.Query()))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(page))
}

// Get godoc
// @ID           getChannelSetting
// @Summary      Get a channel setting
// @Tags         channels
// @Produce      json
// @Param        id  path  int     true  "Channel ID"
// @Param        key path  string  true  "Setting key"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.ErrorResponse
// @Security     APIKeyAuth
// @Router       /api/v3/channels/{id}/settings/{key} [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	channelID, ok := h.parseID(c, ParamID)
	if !ok {
		return
	}
	row, err := h.settings.GetByKey(c.Request.Context(), channelID, c.Param(ParamSettingKey))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// Put godoc
// @ID           putChannelSetting
// @Summary      Create or replace a channel setting
// @Tags         channels
// @Accept       json
// @Produce      json
// @Param        id      path  int                 true  "Channel ID"
// @Param        key     path  string              true  "Setting key"
// @Param        request body  dto.SettingRequest  true  "Setting value"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     APIKeyAuth
// @Router       /api/v3/channels/{id}/settings/{key} [put]
func (h *SettingsHandler) Put(c *gin.Context) {
	channelID, ok := h.parseID(c, ParamID)
	if !ok {
		return
	}
	var req dto.SettingRequest
	if !h.BindJSON(c, &req) {
		return
	}
	row, err := h.settings.Upsert(c.Request.Context(), channelID, c.Param(ParamSettingKey), req.Value)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// Delete godoc
// @ID           deleteChannelSetting
// @Summary      Delete a channel setting
// @Tags         channels
// @Param        id  path  int     true  "Channel ID"
// @Param        key path  string  true  "Setting key"
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Security     APIKeyAuth
// @Router       /api/v3/channels/{id}/settings/{key} [delete]
func (h *SettingsHandler) Delete(c *gin.Context) {
	channelID, ok := h.parseID(c, ParamID)
	if !ok {
		return
	}
	if err := h.settings.DeleteByKey(c.Request.Context(), channelID, c.Param(ParamSettingKey)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
