package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Business(t *testing.T) {
	m := NewMetrics()

	m.CartItemAdded(1)
	m.CartItemAdded(1)
	m.CartItemAdded(2)
	m.QuoteSubmitted(1)
	m.CustomerRegistered(2)
	m.OrderPlaced(&models.Order{ChannelID: 1, CurrencyCode: "USD", TotalIncTax: decimal.RequireFromString("19.99")})
	m.OrderPlaced(&models.Order{ChannelID: 1, CurrencyCode: "USD", TotalIncTax: decimal.RequireFromString("5.01")})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cartItems.WithLabelValues("1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cartItems.WithLabelValues("2")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quotes.WithLabelValues("1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.customers.WithLabelValues("2")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.orders.WithLabelValues("1", "USD")))
	assert.InDelta(t, 25.0, testutil.ToFloat64(m.orderValue.WithLabelValues("1", "USD")), 1e-9)
}

func TestMetrics_HTTP(t *testing.T) {
	m := NewMetrics()

	done := m.RequestStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpInFlight))
	done()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInFlight))

	m.ObserveRequest(http.MethodGet, "/storefront/products/:slug", 200, 15*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "", 404, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/storefront/products/:slug", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.CartItemAdded(7)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `commerce_cart_items_added_total{channel_id="7"} 1`), body)
	assert.Contains(t, body, "go_goroutines")
}
