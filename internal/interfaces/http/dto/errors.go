package dto

import (
	"strconv"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
)

// RequestIDPrefix starts every generated request id.
const RequestIDPrefix = "req_"

// timestampFormat is RFC 3339 in UTC with millisecond precision.
const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Status     int               `json:"status"`
	Title      string            `json:"title"`
	Detail     string            `json:"detail"`
	Errors     map[string]string `json:"errors,omitempty"`
	RequestID  string            `json:"request_id"`
	Timestamp  string            `json:"timestamp"`
	RetryAfter int               `json:"retry_after,omitempty"`
}

// NewErrorResponse renders err. An empty requestID is replaced with a
// generated one.
func NewErrorResponse(err *shared.APIError, requestID string, now time.Time) ErrorResponse {
	if requestID == "" {
		requestID = GenerateRequestID(now)
	}
	return ErrorResponse{
		Status:     err.Status,
		Title:      err.Title,
		Detail:     err.Detail,
		Errors:     err.Errors,
		RequestID:  requestID,
		Timestamp:  now.UTC().Format(timestampFormat),
		RetryAfter: err.RetryAfter,
	}
}

// GenerateRequestID returns "req_" followed by the base-36 unix milliseconds.
func GenerateRequestID(now time.Time) string {
	return RequestIDPrefix + strconv.FormatInt(now.UnixMilli(), 36)
}
