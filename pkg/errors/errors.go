package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeConflict indicates a conflict with existing data,
	// including re-initialization of a singleton account
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeUnauthorized indicates the signer lacks the required role
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"

	// ErrorTypeInvalidState indicates an operation attempted against a
	// claim or entity that is not in the required lifecycle state
	ErrorTypeInvalidState ErrorType = "INVALID_STATE"

	// ErrorTypeQueueDisabled indicates the claim queue is not accepting
	// submissions
	ErrorTypeQueueDisabled ErrorType = "QUEUE_DISABLED"

	// ErrorTypeUnknownPaymentToken indicates the referenced payment mint
	// is not registered as an accepted fee token
	ErrorTypeUnknownPaymentToken ErrorType = "UNKNOWN_PAYMENT_TOKEN"

	// ErrorTypeOverflow indicates a counter would exceed its
	// representable range
	ErrorTypeOverflow ErrorType = "OVERFLOW"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeExternal indicates an error from external service
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// TypeOf returns the ErrorType of err, or ErrorTypeInternal when err is not
// an AppError
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsType reports whether err is an AppError of the given type
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: message,
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Message: message,
	}
}

// NewInvalidStateError creates a new invalid state error
func NewInvalidStateError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidState,
		Message: message,
	}
}

// NewQueueDisabledError creates a new queue disabled error
func NewQueueDisabledError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeQueueDisabled,
		Message: message,
	}
}

// NewUnknownPaymentTokenError creates a new unknown payment token error
func NewUnknownPaymentTokenError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnknownPaymentToken,
		Message: message,
	}
}

// NewOverflowError creates a new counter overflow error
func NewOverflowError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeOverflow,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// NewExternalError creates a new external service error
func NewExternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExternal,
		Message: message,
		Err:     err,
	}
}
