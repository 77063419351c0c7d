package dto

import "github.com/cmlibra71/keenan-group-channels/internal/domain/shared"

// Response wraps a single resource.
type Response struct {
	Data any `json:"data"`
}

// ListResponse wraps one page of resources.
type ListResponse struct {
	Data any      `json:"data"`
	Meta ListMeta `json:"meta"`
}

// ListMeta carries the pagination of a ListResponse.
type ListMeta struct {
	Pagination PaginationMeta `json:"pagination"`
}

// PaginationMeta describes where a page sits in the full result set
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewResponse wraps data.
func NewResponse(data any) Response {
	return Response{Data: data}
}

// NewListResponse wraps a page. A nil slice is rendered as [].
func NewListResponse[T any](page *shared.Page[T]) ListResponse {
	data := page.Data
	if data == nil {
		data = []T{}
	}
	return ListResponse{
		Data: data,
		Meta: ListMeta{Pagination: PaginationMeta{
			Page:       page.Pagination.Page,
			Limit:      page.Pagination.Limit,
			Total:      page.Pagination.Total,
			TotalPages: page.Pagination.TotalPages(),
		}},
	}
}

// NewSliceResponse wraps an unpaginated list. A nil slice is rendered as [].
func NewSliceResponse[T any](items []T) Response {
	if items == nil {
		items = []T{}
	}
	return Response{Data: items}
}
