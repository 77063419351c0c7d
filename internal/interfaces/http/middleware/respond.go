// Package middleware holds the gin middleware shared by the admin and
// storefront APIs.
package middleware

import (
	"strconv"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/logger"
	"github.com/cmlibra71/keenan-group-channels/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Keys and headers shared across middleware and handlers.
const (
	RequestIDKey    = "request_id"
	HeaderRequestID = "X-Request-ID"

	// MaxRequestIDLength caps client supplied request ids.
	MaxRequestIDLength = 128
)

// GetRequestID returns the id assigned by RequestID, falling back to the
// request header.
func GetRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	id := c.GetHeader(HeaderRequestID)
	if len(id) > MaxRequestIDLength {
		return id[:MaxRequestIDLength]
	}
	return id
}

// RespondError writes err as a problem response and aborts the chain.
// Errors that are not APIErrors become a 500 and are logged.
func RespondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	apiErr, unexpected := shared.Normalize(err)
	if unexpected {
		logger.L(c.Request.Context()).Error("Unhandled error", zap.Error(err))
		_ = c.Error(err)
	}
	if apiErr.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(apiErr.RetryAfter))
	}
	c.AbortWithStatusJSON(apiErr.Status, dto.NewErrorResponse(apiErr, GetRequestID(c), time.Now()))
}

// RespondPanic is the recovery responder: a generic 500 problem body.
func RespondPanic(c *gin.Context) {
	RespondError(c, shared.NewInternal(""))
}
