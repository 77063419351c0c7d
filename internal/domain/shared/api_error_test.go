package shared

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *APIError
		status int
		title  string
		code   string
		detail string
	}{
		{"bad request", NewBadRequest("Setting key is required.", nil), http.StatusBadRequest, "Bad Request", CodeBadRequest, "Setting key is required."},
		{"unauthorized default", NewUnauthorized(""), http.StatusUnauthorized, "Unauthorized", CodeUnauthorized, "Missing or invalid API key."},
		{"forbidden", NewForbidden("nope"), http.StatusForbidden, "Forbidden", CodeForbidden, "nope"},
		{"not found", NewNotFound("Product", 42), http.StatusNotFound, "Not Found", CodeNotFound, "Product with ID 42 does not exist."},
		{"conflict", NewConflict("Brand name already exists."), http.StatusConflict, "Conflict", CodeConflict, "Brand name already exists."},
		{"validation", NewValidation("bad", map[string]string{"brand_id": "x"}), http.StatusUnprocessableEntity, "Validation Error", CodeUnprocessableEntity, "bad"},
		{"rate limited default", NewRateLimited(0), http.StatusTooManyRequests, "Rate Limited", CodeRateLimited, "Rate limit exceeded. Retry after 60 seconds."},
		{"internal default", NewInternal(""), http.StatusInternalServerError, "Internal Server Error", CodeInternal, "An unexpected error occurred."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.title, tt.err.Title)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.detail, tt.err.Error())
		})
	}
}

func TestNewRateLimited_RetryAfter(t *testing.T) {
	err := NewRateLimited(12)
	assert.Equal(t, 12, err.RetryAfter)
	assert.Equal(t, "Rate limit exceeded. Retry after 12 seconds.", err.Detail)
}

func TestCodeForStatus_Unknown(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeForStatus(418))
	assert.Equal(t, CodeInternal, NewAPIError(503, "Unavailable", "down", nil).Code)
}

func TestAPIError_Is(t *testing.T) {
	err := fmt.Errorf("load cart: %w", NewNotFound("Cart", 7))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.True(t, errors.Is(err, NewNotFound("Cart", 7)))
	assert.False(t, errors.Is(err, NewNotFound("Cart", 8)))
}

func TestNormalize(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		got, unexpected := Normalize(nil)
		assert.Nil(t, got)
		assert.False(t, unexpected)
	})

	t.Run("wrapped api error passes through", func(t *testing.T) {
		orig := NewConflict("dup")
		got, unexpected := Normalize(fmt.Errorf("create: %w", orig))
		require.NotNil(t, got)
		assert.Same(t, orig, got)
		assert.False(t, unexpected)
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		got, unexpected := Normalize(errors.New("pq: connection refused"))
		require.NotNil(t, got)
		assert.Equal(t, http.StatusInternalServerError, got.Status)
		assert.Equal(t, "An unexpected error occurred. Please try again later.", got.Detail)
		assert.True(t, unexpected)
	})
}
