package dto

import (
	"net/http"
	"strings"
)

// Error codes shared with the domain layer. Domain errors carry these codes
// directly; the HTTP layer only maps them to status codes.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeRateLimited  = "RATE_LIMITED"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:        http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"EMAIL_TAKEN":          http.StatusConflict,

	"INVALID_STATE":       http.StatusUnprocessableEntity,
	"NOT_MANAGED_CLIENT":  http.StatusUnprocessableEntity,
	"NO_COUNTERPART":      http.StatusUnprocessableEntity,
	"NOT_CLIENT":          http.StatusUnprocessableEntity,
	"NOT_ACCOUNT_MANAGER": http.StatusUnprocessableEntity,
	"SIDE_MISMATCH":       http.StatusUnprocessableEntity,
	"NOT_DRAFT":           http.StatusUnprocessableEntity,
	"PAYLOAD_MISMATCH":    http.StatusUnprocessableEntity,

	"INVALID_CREDENTIALS": http.StatusUnauthorized,

	ErrCodeRateLimited: http.StatusTooManyRequests,

	"EXTERNAL_DEPENDENCY": http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status for a domain error code. Validation
// codes (INVALID_*, MISSING_*) default to 400; anything unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") || strings.HasPrefix(code, "MISSING_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
