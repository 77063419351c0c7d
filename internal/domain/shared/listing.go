package shared

import (
	"net/url"
	"strconv"
	"strings"
)

// Pagination defaults
const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 250
)

// FilterType selects the comparison applied by a list filter.
type FilterType string

const (
	FilterEq   FilterType = "eq"
	FilterMin  FilterType = "min"
	FilterMax  FilterType = "max"
	FilterIn   FilterType = "in"
	FilterLike FilterType = "like"
)

// FilterValue is one filter on a list query. Value is a scalar for eq, min,
// max and like, and a slice for in.
type FilterValue struct {
	Type  FilterType
	Value any
}

// SortDirection is asc or desc
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ListOptions describes a paginated, filtered and sorted list request.
type ListOptions struct {
	Page      int
	Limit     int
	Sort      string
	Direction SortDirection
	Filters   map[string]FilterValue
	Includes  []string
}

// DefaultListOptions returns page 1 of 50 in ascending order.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Page:      DefaultPage,
		Limit:     DefaultLimit,
		Direction: SortAsc,
	}
}

// Normalized clamps page and limit into range and defaults the direction.
func (o ListOptions) Normalized() ListOptions {
	if o.Page < 1 {
		o.Page = DefaultPage
	}
	if o.Limit < 1 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	if o.Direction != SortDesc {
		o.Direction = SortAsc
	}
	return o
}

// Offset returns the number of rows skipped before the current page.
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// Pagination reports where a page sits in the full result set.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// TotalPages rounds up Total / Limit.
func (p Pagination) TotalPages() int {
	if p.Limit <= 0 {
		return 0
	}
	pages := int(p.Total) / p.Limit
	if int(p.Total)%p.Limit > 0 {
		pages++
	}
	return pages
}

// Page is one page of a list result.
type Page[T any] struct {
	Data       []T
	Pagination Pagination
}

var reservedListParams = map[string]bool{
	"page":      true,
	"limit":     true,
	"sort":      true,
	"direction": true,
	"include":   true,
}

// ParseListQuery reads list options from a query string:
//
//	?page=2&limit=20&sort=name&direction=desc&include=images,variants
//	&is_visible=true&price:min=10&price:max=20&id:in=1,2,3&name:like=pan
//
// Filter values stay strings (in becomes []string); the persistence layer
// converts them to the column type. Unknown fields are filtered out later
// against each service's whitelist.
func ParseListQuery(q url.Values) ListOptions {
	opts := DefaultListOptions()
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		opts.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		opts.Limit = v
	}
	opts.Sort = q.Get("sort")
	if strings.EqualFold(q.Get("direction"), string(SortDesc)) {
		opts.Direction = SortDesc
	}
	if inc := q.Get("include"); inc != "" {
		opts.Includes = splitList(inc)
	}

	for key, values := range q {
		if len(values) == 0 || reservedListParams[key] {
			continue
		}
		field, op, hasOp := strings.Cut(key, ":")
		field = CamelToSnake(field)
		raw := values[0]
		if !hasOp {
			opts.addFilter(field, FilterValue{Type: FilterEq, Value: raw})
			continue
		}
		switch FilterType(op) {
		case FilterMin, FilterMax, FilterLike:
			opts.addFilter(field, FilterValue{Type: FilterType(op), Value: raw})
		case FilterIn:
			opts.addFilter(field, FilterValue{Type: FilterIn, Value: splitList(raw)})
		}
	}
	return opts.Normalized()
}

// Filter keys are "field" for eq and "field:op" otherwise so that min and max
// on the same column can coexist.
func (o *ListOptions) addFilter(field string, f FilterValue) {
	if o.Filters == nil {
		o.Filters = make(map[string]FilterValue)
	}
	key := field
	if f.Type != FilterEq {
		key = field + ":" + string(f.Type)
	}
	o.Filters[key] = f
}

// FilterField strips the operator suffix from a filter key.
func FilterField(key string) string {
	field, _, _ := strings.Cut(key, ":")
	return field
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
