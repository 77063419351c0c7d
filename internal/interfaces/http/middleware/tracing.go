package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

var untracedPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// Tracing starts a server span per request through otelgin, named after the
// route pattern, and marks 5xx responses as errors. Health and metrics
// scrapes are not traced.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return otelgin.Middleware(cfg.ServiceName,
		otelgin.WithFilter(func(r *http.Request) bool {
			return !untracedPaths[r.URL.Path]
		}),
	)
}

// SpanAttributes enriches the current span with request, channel and
// customer identifiers. It belongs after RequestID and Tracing, and after
// the session middleware on storefront routes.
func SpanAttributes(channelID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := GetRequestID(c); id != "" {
				span.SetAttributes(attribute.String("request_id", id))
			}
			if channelID > 0 {
				span.SetAttributes(attribute.Int64("channel_id", channelID))
			}
			if s := GetSession(c); s != nil {
				span.SetAttributes(attribute.Int64("customer_id", s.CustomerID))
			}
		}

		c.Next()

		if span.IsRecording() && c.Writer.Status() >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(c.Writer.Status()))
		}
	}
}
