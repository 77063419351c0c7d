package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// DefaultMetricsInterval is how often metrics are pushed to the collector.
const DefaultMetricsInterval = 60 * time.Second

// MeterProvider pushes OpenTelemetry metrics to the collector. Prometheus
// scraping is served separately by Metrics.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
}

// NewMeterProvider creates the provider and registers it globally. With
// metrics export disabled, Meter falls back to the global no-op provider.
func NewMeterProvider(ctx context.Context, cfg Config, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{logger: logger}
	if !cfg.MetricsEnabled {
		return mp, nil
	}

	interval := cfg.MetricsInterval
	if interval <= 0 {
		interval = DefaultMetricsInterval
	}
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}
	res, err := serviceResource(cfg)
	if err != nil {
		return nil, err
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Info("OpenTelemetry MeterProvider initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", interval))
	return mp, nil
}

// IsEnabled reports whether metrics are exported.
func (mp *MeterProvider) IsEnabled() bool { return mp.provider != nil }

// Meter returns a named meter.
func (mp *MeterProvider) Meter(name string) metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(name)
	}
	return mp.provider.Meter(name)
}

// Shutdown flushes pending metrics and stops the provider.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := mp.provider.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

// Instrument names of the OTLP business metrics.
const (
	InstrumentCartItemsAdded      = "commerce.cart.items_added"
	InstrumentQuotesSubmitted     = "commerce.quotes.submitted"
	InstrumentOrdersPlaced        = "commerce.orders.placed"
	InstrumentOrderValue          = "commerce.orders.value"
	InstrumentCustomersRegistered = "commerce.customers.registered"
)

// BusinessMetrics records storefront events as OpenTelemetry counters. It
// satisfies the same hook as Metrics.
type BusinessMetrics struct {
	cartItems  metric.Int64Counter
	quotes     metric.Int64Counter
	orders     metric.Int64Counter
	orderValue metric.Float64Counter
	customers  metric.Int64Counter
}

// NewBusinessMetrics creates the instruments on meter.
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	var (
		bm  BusinessMetrics
		err error
	)
	if bm.cartItems, err = meter.Int64Counter(InstrumentCartItemsAdded,
		metric.WithDescription("Products added to storefront carts"), metric.WithUnit("{item}")); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", InstrumentCartItemsAdded, err)
	}
	if bm.quotes, err = meter.Int64Counter(InstrumentQuotesSubmitted,
		metric.WithDescription("Quotes submitted from storefronts"), metric.WithUnit("{quote}")); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", InstrumentQuotesSubmitted, err)
	}
	if bm.orders, err = meter.Int64Counter(InstrumentOrdersPlaced,
		metric.WithDescription("Orders placed at checkout"), metric.WithUnit("{order}")); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", InstrumentOrdersPlaced, err)
	}
	if bm.orderValue, err = meter.Float64Counter(InstrumentOrderValue,
		metric.WithDescription("Sum of order totals including tax")); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", InstrumentOrderValue, err)
	}
	if bm.customers, err = meter.Int64Counter(InstrumentCustomersRegistered,
		metric.WithDescription("Customer accounts registered on storefronts"), metric.WithUnit("{customer}")); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", InstrumentCustomersRegistered, err)
	}
	return &bm, nil
}

func channelAttr(id int64) metric.MeasurementOption {
	return metric.WithAttributes(attribute.Int64("channel_id", id))
}

func (bm *BusinessMetrics) CartItemAdded(channelID int64) {
	bm.cartItems.Add(context.Background(), 1, channelAttr(channelID))
}

func (bm *BusinessMetrics) QuoteSubmitted(channelID int64) {
	bm.quotes.Add(context.Background(), 1, channelAttr(channelID))
}

func (bm *BusinessMetrics) OrderPlaced(order *models.Order) {
	attrs := metric.WithAttributes(
		attribute.Int64("channel_id", order.ChannelID),
		attribute.String("currency", order.CurrencyCode),
	)
	bm.orders.Add(context.Background(), 1, attrs)
	bm.orderValue.Add(context.Background(), order.TotalIncTax.InexactFloat64(), attrs)
}

func (bm *BusinessMetrics) CustomerRegistered(channelID int64) {
	bm.customers.Add(context.Background(), 1, channelAttr(channelID))
}
