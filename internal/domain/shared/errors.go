package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   *DomainError
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is the sentinel this error was derived from.
// Errors created with Wrap match both themselves and their sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e == t || (e.cause != nil && e.cause == t)
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a domain error carrying the sentinel's code with a specific message.
// errors.Is(err, sentinel) holds for the result.
func Wrap(sentinel *DomainError, message string) *DomainError {
	return &DomainError{
		Code:    sentinel.Code,
		Message: message,
		cause:   sentinel,
	}
}

// CodeOf returns the domain error code carried by err, or "" when err is not a DomainError.
func CodeOf(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// Common domain errors
var (
	ErrNotFound             = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists        = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput         = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidQuantity      = NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	ErrConcurrencyConflict  = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrConsistencyViolation = NewDomainError("CONSISTENCY_VIOLATION", "Stored records are inconsistent")
	ErrPricingUnavailable   = NewDomainError("PRICING_UNAVAILABLE", "No active supplier price available")
	ErrInvalidState         = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)
