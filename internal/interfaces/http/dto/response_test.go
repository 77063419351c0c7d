package dto

import (
	"encoding/json"
	"testing"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewListResponse(t *testing.T) {
	page := &shared.Page[string]{
		Data:       []string{"a", "b"},
		Pagination: shared.Pagination{Page: 2, Limit: 2, Total: 5},
	}
	raw, err := json.Marshal(NewListResponse(page))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"data": ["a", "b"],
		"meta": {"pagination": {"page": 2, "limit": 2, "total": 5, "total_pages": 3}}
	}`, string(raw))
}

func TestNewListResponse_EmptyPage(t *testing.T) {
	raw, err := json.Marshal(NewListResponse(&shared.Page[int]{Pagination: shared.Pagination{Page: 1, Limit: 50}}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"data": [], "meta": {"pagination": {"page": 1, "limit": 50, "total": 0, "total_pages": 0}}}`, string(raw))
}

func TestNewSliceResponse(t *testing.T) {
	raw, err := json.Marshal(NewSliceResponse[int](nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"data": []}`, string(raw))
}
