// Package domain defines the core domain error types shared across the
// admin HTTP and local control surfaces.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a structured error with a machine-readable code,
// used at the HTTP/local-control boundary to translate a redisserver
// sentinel into a response the admin surfaces can render consistently.
type DomainError struct {
	Code    string // Error code (e.g., "RN-SYS-5000")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// System errors.
var (
	ErrInternalServer   = NewDomainError("RN-SYS-5000", "internal server error")
	ErrStorageError     = NewDomainError("RN-SYS-5001", "storage error")
	ErrServiceUnavailable = NewDomainError("RN-SYS-5030", "service unavailable")
	ErrBadRequest       = NewDomainError("RN-SYS-4000", "bad request")
	ErrRateLimited      = NewDomainError("RN-SYS-4290", "too many requests")
)

// Argument errors.
var (
	ErrInvalidArgument  = NewDomainError("RN-ARG-1001", "invalid argument")
	ErrMissingArgument  = NewDomainError("RN-ARG-1002", "missing required argument")
	ErrArgumentConflict = NewDomainError("RN-ARG-1003", "argument conflict")
)

// Admin errors, returned by the debug/admin HTTP surface.
var (
	ErrAdminPermissionDenied = NewDomainError("RN-ADMIN-4030", "admin role required")
	ErrAdminIPNotAllowed     = NewDomainError("RN-ADMIN-4031", "admin ip not allowed")
	ErrAdminResourceNotFound = NewDomainError("RN-ADMIN-4041", "admin resource not found")
	ErrAdminOperationConflict = NewDomainError("RN-ADMIN-4091", "admin operation conflict")
)
