package telemetry

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric names.
const (
	MetricHTTPRequestsTotal   = "commerce_http_requests_total"
	MetricHTTPRequestDuration = "commerce_http_request_duration_seconds"
	MetricHTTPInFlight        = "commerce_http_requests_in_flight"
	MetricCartItemsAdded      = "commerce_cart_items_added_total"
	MetricQuotesSubmitted     = "commerce_quotes_submitted_total"
	MetricOrdersPlaced        = "commerce_orders_placed_total"
	MetricOrderValue          = "commerce_order_value_total"
	MetricCustomersRegistered = "commerce_customers_registered_total"
)

// Metrics owns a Prometheus registry with the HTTP and business
// collectors. Its business methods satisfy the storefront's metrics hook.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInFlight prometheus.Gauge

	cartItems  *prometheus.CounterVec
	quotes     *prometheus.CounterVec
	orders     *prometheus.CounterVec
	orderValue *prometheus.CounterVec
	customers  *prometheus.CounterVec
}

// NewMetrics creates the collectors on a fresh registry, together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	channel := []string{"channel_id"}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricHTTPRequestsTotal,
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricHTTPRequestDuration,
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricHTTPInFlight,
			Help: "HTTP requests being served.",
		}),
		cartItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricCartItemsAdded,
			Help: "Products added to storefront carts.",
		}, channel),
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricQuotesSubmitted,
			Help: "Quotes submitted from storefronts.",
		}, channel),
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricOrdersPlaced,
			Help: "Orders placed at checkout.",
		}, []string{"channel_id", "currency"}),
		orderValue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricOrderValue,
			Help: "Sum of order totals including tax.",
		}, []string{"channel_id", "currency"}),
		customers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricCustomersRegistered,
			Help: "Customer accounts registered on storefronts.",
		}, channel),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.httpInFlight,
		m.cartItems, m.quotes, m.orders, m.orderValue, m.customers,
	)
	return m
}

// Registry exposes the registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RegisterDB adds connection pool statistics for db.
func (m *Metrics) RegisterDB(db *sql.DB, name string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// RequestStarted increments the in-flight gauge; call the returned func
// when the request finishes.
func (m *Metrics) RequestStarted() func() {
	m.httpInFlight.Inc()
	return m.httpInFlight.Dec
}

// ObserveRequest records one served request. route is the matched route
// pattern, never the raw path.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func channelLabel(id int64) string { return strconv.FormatInt(id, 10) }

// CartItemAdded counts a product added to a cart.
func (m *Metrics) CartItemAdded(channelID int64) {
	m.cartItems.WithLabelValues(channelLabel(channelID)).Inc()
}

// QuoteSubmitted counts a submitted quote.
func (m *Metrics) QuoteSubmitted(channelID int64) {
	m.quotes.WithLabelValues(channelLabel(channelID)).Inc()
}

// OrderPlaced counts an order and adds its total to the order value.
func (m *Metrics) OrderPlaced(order *models.Order) {
	labels := []string{channelLabel(order.ChannelID), order.CurrencyCode}
	m.orders.WithLabelValues(labels...).Inc()
	m.orderValue.WithLabelValues(labels...).Add(order.TotalIncTax.InexactFloat64())
}

// CustomerRegistered counts a new storefront account.
func (m *Metrics) CustomerRegistered(channelID int64) {
	m.customers.WithLabelValues(channelLabel(channelID)).Inc()
}
