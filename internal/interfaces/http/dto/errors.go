package dto

import (
	"net/http"

	"github.com/campus/backend/internal/domain/shared"
)

// Transport-level error codes. Domain codes come from the shared package and
// pass through unchanged.
const (
	ErrCodeInternal       = "INTERNAL_ERROR"
	ErrCodeInvalidJSON    = "INVALID_JSON"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeTenantRequired = "TENANT_REQUIRED"
	ErrCodeTooLarge       = "REQUEST_TOO_LARGE"
	ErrCodeRouteNotFound  = "ROUTE_NOT_FOUND"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeValidation:         http.StatusBadRequest,
	shared.CodeTenantNotFound:     http.StatusNotFound,
	shared.CodeTenantSuspended:    http.StatusForbidden,
	shared.CodeDuplicateEntity:    http.StatusConflict,
	shared.CodePlanNotFound:       http.StatusInternalServerError,
	shared.CodeTransactionAborted: http.StatusInternalServerError,
	shared.CodeNotFound:           http.StatusNotFound,
	shared.CodeForbidden:          http.StatusForbidden,

	ErrCodeInternal:       http.StatusInternalServerError,
	ErrCodeInvalidJSON:    http.StatusBadRequest,
	ErrCodeUnauthorized:   http.StatusUnauthorized,
	ErrCodeTenantRequired: http.StatusBadRequest,
	ErrCodeTooLarge:       http.StatusRequestEntityTooLarge,
	ErrCodeRouteNotFound:  http.StatusNotFound,
}

// GetHTTPStatus returns the HTTP status for an error code.
// Unknown codes are server errors.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsServerError reports whether the code maps to a 5xx status
func IsServerError(code string) bool {
	return GetHTTPStatus(code) >= http.StatusInternalServerError
}
