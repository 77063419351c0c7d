package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSwaggerProtection(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		r := newEngine(SwaggerProtection(SwaggerConfig{Enabled: false}))
		w := serve(r, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("enabled without allowlist", func(t *testing.T) {
		r := newEngine(SwaggerProtection(SwaggerConfig{Enabled: true}))
		w := serve(r, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("allowlist", func(t *testing.T) {
		r := newEngine(SwaggerProtection(SwaggerConfig{
			Enabled:    true,
			AllowedIPs: []string{"10.0.0.0/8", "192.168.1.5", "not-an-ip"},
		}))
		for addr, want := range map[string]int{
			"10.1.2.3:1234":    http.StatusOK,
			"192.168.1.5:80":   http.StatusOK,
			"192.168.1.6:80":   http.StatusForbidden,
			"203.0.113.9:4000": http.StatusForbidden,
		} {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = addr
			assert.Equal(t, want, serve(r, req).Code, addr)
		}
	})
}

func TestIsIPAllowed(t *testing.T) {
	_, network, _ := net.ParseCIDR("172.16.0.0/12")
	assert.True(t, isIPAllowed(net.ParseIP("172.20.1.1"), nil, []*net.IPNet{network}))
	assert.False(t, isIPAllowed(nil, []net.IP{net.ParseIP("::1")}, nil))
	assert.True(t, isIPAllowed(net.ParseIP("::1"), []net.IP{net.ParseIP("::1")}, nil))
}
