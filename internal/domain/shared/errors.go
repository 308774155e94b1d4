package shared

import "fmt"

// Error codes surfaced by the provisioning core
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeTenantNotFound     = "TENANT_NOT_FOUND"
	CodeTenantSuspended    = "TENANT_SUSPENDED"
	CodeDuplicateEntity    = "DUPLICATE_ENTITY"
	CodePlanNotFound       = "PLAN_NOT_FOUND"
	CodeTransactionAborted = "TRANSACTION_ABORTED"
	CodeNotFound           = "NOT_FOUND"
	CodeForbidden          = "FORBIDDEN"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Field names the conflicting or invalid attribute, if any
	Field string `json:"field,omitempty"`
	// Step names the workflow step that failed (TRANSACTION_ABORTED and DUPLICATE_ENTITY)
	Step string `json:"step,omitempty"`
	// Err is the underlying cause, never serialized
	Err error `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code.
// This lets callers match on the shared sentinels below with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a VALIDATION_ERROR for the given field
func NewValidationError(field, message string) *DomainError {
	return &DomainError{
		Code:    CodeValidation,
		Message: message,
		Field:   field,
	}
}

// NewDuplicateEntityError reports a uniqueness violation on field
func NewDuplicateEntityError(entity, field string) *DomainError {
	return &DomainError{
		Code:    CodeDuplicateEntity,
		Message: fmt.Sprintf("%s with this %s already exists", entity, field),
		Field:   field,
	}
}

// NewTransactionAbortedError wraps a failure that rolled back a workflow transaction
func NewTransactionAbortedError(step string, cause error) *DomainError {
	return &DomainError{
		Code:    CodeTransactionAborted,
		Message: fmt.Sprintf("provisioning aborted at step %q", step),
		Step:    step,
		Err:     cause,
	}
}

// Common domain errors
var (
	ErrNotFound           = NewDomainError(CodeNotFound, "Resource not found")
	ErrValidation         = NewDomainError(CodeValidation, "Invalid input provided")
	ErrTenantNotFound     = NewDomainError(CodeTenantNotFound, "Tenant not found")
	ErrTenantSuspended    = NewDomainError(CodeTenantSuspended, "Tenant is not active")
	ErrDuplicateEntity    = NewDomainError(CodeDuplicateEntity, "Resource already exists")
	ErrPlanNotFound       = NewDomainError(CodePlanNotFound, "Institution has no resolvable plan")
	ErrTransactionAborted = NewDomainError(CodeTransactionAborted, "Provisioning transaction aborted")
	ErrForbidden          = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
)
