package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey     contextKey = "logger"
	requestIDKey  contextKey = "request_id"
	channelIDKey  contextKey = "channel_id"
	customerIDKey contextKey = "customer_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext retrieves the logger from context, falling back to a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}

// WithRequestID stores the request id on the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithChannelID stores the storefront channel on the context.
func WithChannelID(ctx context.Context, channelID int64) context.Context {
	return context.WithValue(ctx, channelIDKey, channelID)
}

// WithCustomerID stores the signed-in customer on the context.
func WithCustomerID(ctx context.Context, customerID int64) context.Context {
	return context.WithValue(ctx, customerIDKey, customerID)
}

// RequestID returns the request id stored on ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// L returns the context logger enriched with request, channel, customer and
// trace identifiers present on ctx.
//
//	logger.L(ctx).Info("cart created", zap.Int64("cart_id", id))
func L(ctx context.Context) *zap.Logger {
	l := FromContext(ctx)

	var fields []zap.Field
	if id := RequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id, ok := ctx.Value(channelIDKey).(int64); ok {
		fields = append(fields, zap.Int64("channel_id", id))
	}
	if id, ok := ctx.Value(customerIDKey).(int64); ok {
		fields = append(fields, zap.Int64("customer_id", id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}

	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
