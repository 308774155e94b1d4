package dto

import (
	"errors"

	"github.com/campus/backend/internal/domain/shared"
)

// Response represents a standard API response
type Response struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorInfo `json:"error,omitempty"`
	RequestID string     `json:"request_id,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Step    string `json:"step,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithRequestID creates an error response carrying the request ID
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	resp := NewErrorResponse(code, message)
	resp.RequestID = requestID
	return resp
}

// FromError converts an error into an error response and its HTTP status.
// Causes wrapped by a DomainError are never exposed, and errors that are
// not domain errors collapse into a generic internal error.
func FromError(err error, requestID string) (int, Response) {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		return GetHTTPStatus(ErrCodeInternal),
			NewErrorResponseWithRequestID(ErrCodeInternal, "An internal error occurred", requestID)
	}

	resp := NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID)
	resp.Error.Field = domainErr.Field
	resp.Error.Step = domainErr.Step
	return GetHTTPStatus(domainErr.Code), resp
}
