package shared

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListQuery_Defaults(t *testing.T) {
	opts := ParseListQuery(url.Values{})

	assert.Equal(t, 1, opts.Page)
	assert.Equal(t, 50, opts.Limit)
	assert.Equal(t, SortAsc, opts.Direction)
	assert.Empty(t, opts.Filters)
	assert.Empty(t, opts.Includes)
}

func TestParseListQuery_Full(t *testing.T) {
	q, err := url.ParseQuery("page=3&limit=20&sort=name&direction=DESC&include=images,%20variants" +
		"&is_visible=true&price:min=10&price:max=20&id:in=1,2,,3&name:like=pan&brandId=4&bogus:op=1")
	require.NoError(t, err)

	opts := ParseListQuery(q)

	assert.Equal(t, 3, opts.Page)
	assert.Equal(t, 20, opts.Limit)
	assert.Equal(t, 40, opts.Offset())
	assert.Equal(t, "name", opts.Sort)
	assert.Equal(t, SortDesc, opts.Direction)
	assert.Equal(t, []string{"images", "variants"}, opts.Includes)

	assert.Equal(t, FilterValue{Type: FilterEq, Value: "true"}, opts.Filters["is_visible"])
	assert.Equal(t, FilterValue{Type: FilterMin, Value: "10"}, opts.Filters["price:min"])
	assert.Equal(t, FilterValue{Type: FilterMax, Value: "20"}, opts.Filters["price:max"])
	assert.Equal(t, FilterValue{Type: FilterIn, Value: []string{"1", "2", "3"}}, opts.Filters["id:in"])
	assert.Equal(t, FilterValue{Type: FilterLike, Value: "pan"}, opts.Filters["name:like"])
	assert.Equal(t, FilterValue{Type: FilterEq, Value: "4"}, opts.Filters["brand_id"])
	assert.NotContains(t, opts.Filters, "bogus:op")
	assert.Len(t, opts.Filters, 6)
}

func TestListOptions_Normalized(t *testing.T) {
	opts := ListOptions{Page: -1, Limit: 1000, Direction: "sideways"}.Normalized()

	assert.Equal(t, 1, opts.Page)
	assert.Equal(t, MaxLimit, opts.Limit)
	assert.Equal(t, SortAsc, opts.Direction)
}

func TestPagination_TotalPages(t *testing.T) {
	assert.Equal(t, 0, Pagination{Limit: 50, Total: 0}.TotalPages())
	assert.Equal(t, 1, Pagination{Limit: 50, Total: 50}.TotalPages())
	assert.Equal(t, 3, Pagination{Limit: 50, Total: 101}.TotalPages())
	assert.Equal(t, 0, Pagination{Limit: 0, Total: 10}.TotalPages())
}

func TestFilterField(t *testing.T) {
	assert.Equal(t, "price", FilterField("price:min"))
	assert.Equal(t, "name", FilterField("name"))
}
