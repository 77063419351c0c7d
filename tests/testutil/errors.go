package testutil

import (
	"testing"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/stretchr/testify/require"
)

// APIError asserts that err wraps a *shared.APIError and returns it.
func APIError(t *testing.T, err error) *shared.APIError {
	t.Helper()
	var apiErr *shared.APIError
	require.ErrorAs(t, err, &apiErr)
	return apiErr
}

// AssertAPIError asserts err is an APIError with the given status and detail.
func AssertAPIError(t *testing.T, err error, status int, detail string) {
	t.Helper()
	apiErr := APIError(t, err)
	require.Equal(t, status, apiErr.Status, "unexpected status for %q", apiErr.Detail)
	if detail != "" {
		require.Equal(t, detail, apiErr.Detail)
	}
}
