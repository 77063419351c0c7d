package handler

import (
	"context"
	"net/http"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/crud"
	"github.com/cmlibra71/keenan-group-channels/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Path parameters used by the admin resource routes.
const (
	ParamID      = "id"
	ParamChildID = "child_id"
)

// Resource is the admin surface of a flat resource service.
type Resource[T any] interface {
	List(ctx context.Context, opts shared.ListOptions, scopes ...crud.Scope) (*shared.Page[T], error)
	GetByID(ctx context.Context, id int64, includes ...string) (*T, error)
	Create(ctx context.Context, values map[string]any) (*T, error)
	Update(ctx context.Context, id int64, values map[string]any) (*T, error)
	Delete(ctx context.Context, id int64) error
}

// NestedResource is the admin surface of a resource that lives under a
// parent, such as a cart's items.
type NestedResource[T any] interface {
	ListForParent(ctx context.Context, parentID int64, opts shared.ListOptions, scopes ...crud.Scope) (*shared.Page[T], error)
	GetByIDForParent(ctx context.Context, parentID, id int64, includes ...string) (*T, error)
	CreateForParent(ctx context.Context, parentID int64, values map[string]any) (*T, error)
	UpdateForParent(ctx context.Context, parentID, id int64, values map[string]any) (*T, error)
	DeleteForParent(ctx context.Context, parentID, id int64) error
}

// ResourceHandler serves list, get, create, update and delete for one
// resource at /<resource> and /<resource>/:id.
type ResourceHandler[T any] struct {
	BaseHandler
	svc Resource[T]
}

// NewResourceHandler creates a ResourceHandler over svc.
func NewResourceHandler[T any](svc Resource[T]) *ResourceHandler[T] {
	return &ResourceHandler[T]{svc: svc}
}

// List returns one page of the resource. Query parameters: page, limit,
// sort, direction, include and any configured filter.
func (h *ResourceHandler[T]) List(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), shared.ParseListQuery(c.Request.URL.Query()))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(page))
}

// Get returns one row, expanding the associations named by include.
func (h *ResourceHandler[T]) Get(c *gin.Context) {
	id, ok := h.parseID(c, ParamID)
	if !ok {
		return
	}
	row, err := h.svc.GetByID(c.Request.Context(), id, includes(c)...)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

func (h *ResourceHandler[T]) Create(c *gin.Context) {
	values, ok := h.BindValues(c)
	if !ok {
		return
	}
	row, err := h.svc.Create(c.Request.Context(), values)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, row)
}

func (h *ResourceHandler[T]) Update(c *gin.Context) {
	id, ok := h.parseID(c, ParamID)
	if !ok {
		return
	}
	values, ok := h.BindValues(c)
	if !ok {
		return
	}
	row, err := h.svc.Update(c.Request.Context(), id, values)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

func (h *ResourceHandler[T]) Delete(c *gin.Context) {
	id, ok := h.parseID(c, ParamID)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// NestedHandler serves a child resource at /<parent>/:id/<children> and
// /<parent>/:id/<children>/:child_id.
type NestedHandler[T any] struct {
	BaseHandler
	svc NestedResource[T]
}

// NewNestedHandler creates a NestedHandler over svc.
func NewNestedHandler[T any](svc NestedResource[T]) *NestedHandler[T] {
	return &NestedHandler[T]{svc: svc}
}

func (h *NestedHandler[T]) List(c *gin.Context) {
	parentID, ok := h.parseID(c, ParamID)
	if !ok {
		return
	}
	page, err := h.svc.ListForParent(c.Request.Context(), parentID, shared.ParseListQuery(c.Request.URL.Query()))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(page))
}

func (h *NestedHandler[T]) Get(c *gin.Context) {
	parentID, id, ok := h.ids(c)
	if !ok {
		return
	}
	row, err := h.svc.GetByIDForParent(c.Request.Context(), parentID, id, includes(c)...)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

func (h *NestedHandler[T]) Create(c *gin.Context) {
	parentID, ok := h.parseID(c, ParamID)
	if !ok {
		return
	}
	values, ok := h.BindValues(c)
	if !ok {
		return
	}
	row, err := h.svc.CreateForParent(c.Request.Context(), parentID, values)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, row)
}

func (h *NestedHandler[T]) Update(c *gin.Context) {
	parentID, id, ok := h.ids(c)
	if !ok {
		return
	}
	values, ok := h.BindValues(c)
	if !ok {
		return
	}
	row, err := h.svc.UpdateForParent(c.Request.Context(), parentID, id, values)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

func (h *NestedHandler[T]) Delete(c *gin.Context) {
	parentID, id, ok := h.ids(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteForParent(c.Request.Context(), parentID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *NestedHandler[T]) ids(c *gin.Context) (parentID, id int64, ok bool) {
	if parentID, ok = h.parseID(c, ParamID); !ok {
		return 0, 0, false
	}
	if id, ok = h.parseID(c, ParamChildID); !ok {
		return 0, 0, false
	}
	return parentID, id, true
}

func includes(c *gin.Context) []string {
	return shared.ParseListQuery(c.Request.URL.Query()).Includes
}
