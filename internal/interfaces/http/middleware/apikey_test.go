package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIKeyAuth(t *testing.T) {
	r := newEngine(APIKeyAuth([]string{"key-one", "", "key-two"}))

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"first key", "key-one", http.StatusOK},
		{"second key", "key-two", http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "key-three", http.StatusUnauthorized},
		{"prefix of a key", "key", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.token != "" {
				req.Header.Set(HeaderAuthToken, tt.token)
			}
			w := serve(r, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Equal(t, "Missing or invalid API key.", decodeError(t, w)["detail"])
			}
		})
	}
}

func TestAPIKeyAuth_NoKeysRejectsAll(t *testing.T) {
	r := newEngine(APIKeyAuth(nil))
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(HeaderAuthToken, "")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}
