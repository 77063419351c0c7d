package shared

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried by APIError, one per supported HTTP status.
const (
	CodeBadRequest          = "BAD_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeUnprocessableEntity = "UNPROCESSABLE_ENTITY"
	CodeRateLimited         = "RATE_LIMITED"
	CodeInternal            = "INTERNAL_ERROR"
)

const (
	defaultUnauthorizedDetail = "Missing or invalid API key."
	defaultInternalDetail     = "An unexpected error occurred."
	unhandledErrorDetail      = "An unexpected error occurred. Please try again later."
	defaultRetryAfter         = 60
)

// APIError is the error type returned by every service. It carries everything
// the HTTP layer needs to render a problem response.
type APIError struct {
	Status     int
	Title      string
	Detail     string
	Errors     map[string]string
	Code       string
	RetryAfter int
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Detail
}

// Is reports whether target is an APIError with the same code, so callers can
// write errors.Is(err, shared.ErrNotFound).
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && (t.Detail == "" || t.Detail == e.Detail)
}

// NewAPIError builds an APIError whose code is derived from status.
func NewAPIError(status int, title, detail string, errs map[string]string) *APIError {
	return &APIError{
		Status: status,
		Title:  title,
		Detail: detail,
		Errors: errs,
		Code:   CodeForStatus(status),
	}
}

// CodeForStatus maps an HTTP status to its error code.
func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeBadRequest
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusUnprocessableEntity:
		return CodeUnprocessableEntity
	case http.StatusTooManyRequests:
		return CodeRateLimited
	default:
		return CodeInternal
	}
}

// Sentinels for errors.Is comparisons. They match on code only.
var (
	ErrBadRequest   = &APIError{Code: CodeBadRequest}
	ErrUnauthorized = &APIError{Code: CodeUnauthorized}
	ErrForbidden    = &APIError{Code: CodeForbidden}
	ErrNotFound     = &APIError{Code: CodeNotFound}
	ErrConflict     = &APIError{Code: CodeConflict}
	ErrValidation   = &APIError{Code: CodeUnprocessableEntity}
	ErrRateLimited  = &APIError{Code: CodeRateLimited}
	ErrInternal     = &APIError{Code: CodeInternal}
)

func NewBadRequest(detail string, errs map[string]string) *APIError {
	return NewAPIError(http.StatusBadRequest, "Bad Request", detail, errs)
}

// NewUnauthorized uses the API key message when detail is empty.
func NewUnauthorized(detail string) *APIError {
	if detail == "" {
		detail = defaultUnauthorizedDetail
	}
	return NewAPIError(http.StatusUnauthorized, "Unauthorized", detail, nil)
}

func NewForbidden(detail string) *APIError {
	return NewAPIError(http.StatusForbidden, "Forbidden", detail, nil)
}

// NewNotFound reports that the resource of the given type and id is missing.
func NewNotFound(resourceType string, id any) *APIError {
	return NewAPIError(http.StatusNotFound, "Not Found",
		fmt.Sprintf("%s with ID %v does not exist.", resourceType, id), nil)
}

func NewConflict(detail string) *APIError {
	return NewAPIError(http.StatusConflict, "Conflict", detail, nil)
}

// NewValidation reports field-level problems keyed by snake_case field name.
func NewValidation(detail string, errs map[string]string) *APIError {
	return NewAPIError(http.StatusUnprocessableEntity, "Validation Error", detail, errs)
}

// NewRateLimited builds a 429; a non-positive retryAfter means 60 seconds.
func NewRateLimited(retryAfter int) *APIError {
	if retryAfter <= 0 {
		retryAfter = defaultRetryAfter
	}
	e := NewAPIError(http.StatusTooManyRequests, "Rate Limited",
		fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", retryAfter), nil)
	e.RetryAfter = retryAfter
	return e
}

func NewInternal(detail string) *APIError {
	if detail == "" {
		detail = defaultInternalDetail
	}
	return NewAPIError(http.StatusInternalServerError, "Internal Server Error", detail, nil)
}

// Normalize converts any error into an APIError. An APIError anywhere in the
// chain is returned unchanged; anything else becomes a generic 500. The second
// result reports whether err was unexpected and should be logged by the caller.
func Normalize(err error) (*APIError, bool) {
	if err == nil {
		return nil, false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, false
	}
	return NewInternal(unhandledErrorDetail), true
}
