package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents validation errors
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Error codes shared by handlers and the problem mapper
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeAirlineNotFound    = "AIRLINE_NOT_FOUND"
	CodeUnknownTable       = "UNKNOWN_TABLE"
	CodeNoData             = "NO_DATA"
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
	CodeDataUnavailable    = "DATA_UNAVAILABLE"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Predefined error types for common scenarios
var (
	// 400 Bad Request
	ErrInvalidRequest   = New(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format")
	ErrValidationFailed = New(http.StatusBadRequest, CodeValidationFailed, "Request validation failed")

	// 404 Not Found
	ErrNotFound = New(http.StatusNotFound, CodeNotFound, "Resource not found")

	// 429 Too Many Requests
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, CodeRateLimitExceeded, "Rate limit exceeded")

	// 500 Internal Server Error
	ErrInternalServer = New(http.StatusInternalServerError, CodeInternal, "Internal server error")

	// 503 Service Unavailable
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, CodeServiceUnavailable, "Service temporarily unavailable")
)

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// NotFoundError creates a not found error with details
func NotFoundError(resource string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeNotFound, fmt.Sprintf("%s not found", resource), resource)
}

// AirlineNotFoundError reports an airline code absent from the trends table
func AirlineNotFoundError(code string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeAirlineNotFound,
		fmt.Sprintf("airline %q not found", code), map[string]string{"airline_code": code})
}

// UnknownTableError reports a table name outside the KPI registry
func UnknownTableError(table string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeUnknownTable,
		fmt.Sprintf("unknown table %q", table), map[string]string{"table": table})
}

// DataUnavailableError reports that Parquet input could not be read.
// The underlying cause is logged, never returned to the client.
func DataUnavailableError(table string) *APIError {
	return NewWithDetails(http.StatusServiceUnavailable, CodeDataUnavailable,
		"KPI data is not available; run the exporter first", map[string]string{"table": table})
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// NewValidationErrors creates validation errors from multiple fields
func NewValidationErrors(errors []ValidationError) *APIError {
	return NewWithDetails(
		http.StatusBadRequest,
		CodeValidationFailed,
		"Request validation failed",
		ValidationErrors{Errors: errors},
	)
}
