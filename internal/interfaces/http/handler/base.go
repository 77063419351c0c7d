package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/interfaces/http/dto"
	"github.com/cmlibra71/keenan-group-channels/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

var (
	errBodyNotObject = shared.NewBadRequest("Request body must be a JSON object.", nil)
	errBodyInvalid   = shared.NewBadRequest("Request body is not valid JSON.", nil)
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a 200 response with data in the envelope
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// HandleError renders err as a problem response.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	middleware.RespondError(c, err)
}

// BindJSON binds the body into obj and renders the failure when it does not
// bind. It reports whether the handler should continue.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		if tooLarge(err) {
			h.HandleError(c, payloadTooLarge(err))
			return false
		}
		h.HandleError(c, middleware.BindingError(err))
		return false
	}
	return true
}

// BindValues decodes the body as a JSON object for the generic resource
// services. Numbers stay json.Number so large ids and prices keep their
// precision.
func (h *BaseHandler) BindValues(c *gin.Context) (map[string]any, bool) {
	values, err := decodeObject(c.Request.Body)
	if err != nil {
		if tooLarge(err) {
			h.HandleError(c, payloadTooLarge(err))
		} else {
			h.HandleError(c, err)
		}
		return nil, false
	}
	return values, true
}

func decodeObject(body io.Reader) (map[string]any, error) {
	if body == nil {
		return nil, errBodyNotObject
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, errBodyNotObject
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var values map[string]any
	if err := dec.Decode(&values); err != nil {
		return nil, errBodyInvalid
	}
	if dec.More() {
		return nil, errBodyInvalid
	}
	return values, nil
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func payloadTooLarge(err error) error {
	var maxErr *http.MaxBytesError
	errors.As(err, &maxErr)
	return shared.NewAPIError(http.StatusRequestEntityTooLarge, "Payload Too Large",
		"Request body exceeds the maximum of "+strconv.FormatInt(maxErr.Limit, 10)+" bytes.", nil)
}

// parseID reads a positive integer path parameter, rendering a 400 when it
// is malformed.
func (h *BaseHandler) parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.HandleError(c, shared.NewBadRequest("Invalid "+name+": must be a positive integer.", nil))
		return 0, false
	}
	return id, true
}
