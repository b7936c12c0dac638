package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents different types of errors that can occur
type ErrorCategory string

const (
	// Fatal errors that should abort the current operation
	ErrorCategoryFatal         ErrorCategory = "FATAL"
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"
	ErrorCategoryCredentials   ErrorCategory = "CREDENTIALS"

	// Request-level errors surfaced to the caller
	ErrorCategoryValidation ErrorCategory = "VALIDATION"
	ErrorCategoryNotFound   ErrorCategory = "NOT_FOUND"

	// Dependency errors that can often be retried
	ErrorCategoryProvider     ErrorCategory = "PROVIDER"
	ErrorCategoryStorage      ErrorCategory = "STORAGE"
	ErrorCategoryLLM          ErrorCategory = "LLM"
	ErrorCategoryNotification ErrorCategory = "NOTIFICATION"
	ErrorCategoryNetwork      ErrorCategory = "NETWORK"
	ErrorCategoryTimeout      ErrorCategory = "TIMEOUT"
	ErrorCategoryRateLimit    ErrorCategory = "RATE_LIMIT"
)

// ErrInvalidInput is the sentinel for degenerate or malformed caller input
// (zero stop distance, non-positive capital, non-monotonic series). It is the
// only fatal condition the calculation engine reports; insufficient data is
// never an error, it yields an empty result.
var ErrInvalidInput = stderrors.New("invalid input")

// ErrNotFound is the sentinel for lookups of rows or symbols that do not exist.
var ErrNotFound = stderrors.New("not found")

// AppError represents a categorized error with context
type AppError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
	Retryable  bool
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *AppError) Unwrap() error {
	return e.Underlying
}

// Is lets errors.Is match the validation and not-found sentinels by category,
// so callers don't depend on how deep the wrap chain goes.
func (e *AppError) Is(target error) bool {
	switch target {
	case ErrInvalidInput:
		return e.Category == ErrorCategoryValidation
	case ErrNotFound:
		return e.Category == ErrorCategoryNotFound
	}
	return false
}

// IsRetryable returns whether this error can be retried
func (e *AppError) IsRetryable() bool {
	return e.Retryable
}

// IsFatal returns whether this error should abort the operation entirely
func (e *AppError) IsFatal() bool {
	return e.Category == ErrorCategoryFatal ||
		e.Category == ErrorCategoryCredentials ||
		e.Category == ErrorCategoryConfiguration
}

// NewAppError creates a new categorized error
func NewAppError(category ErrorCategory, component, operation, message string) *AppError {
	return &AppError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
		Retryable: isRetryableCategory(category),
	}
}

// WrapError wraps an existing error with app error context
func WrapError(err error, category ErrorCategory, component, operation string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
		Retryable:  isRetryableCategory(category),
	}
}

// WithRetryable sets the retryable flag
func (e *AppError) WithRetryable(retryable bool) *AppError {
	e.Retryable = retryable
	return e
}

// isRetryableCategory determines if an error category is generally retryable
func isRetryableCategory(category ErrorCategory) bool {
	switch category {
	case ErrorCategoryNetwork, ErrorCategoryTimeout, ErrorCategoryRateLimit, ErrorCategoryProvider:
		return true
	default:
		return false
	}
}

// Common error constructors

func NewValidationError(component, operation, message string) *AppError {
	return NewAppError(ErrorCategoryValidation, component, operation, message)
}

func NewNotFoundError(component, operation, message string) *AppError {
	return NewAppError(ErrorCategoryNotFound, component, operation, message)
}

func NewProviderError(component, operation string, err error) *AppError {
	return WrapError(err, ErrorCategoryProvider, component, operation)
}

func NewStorageError(component, operation string, err error) *AppError {
	return WrapError(err, ErrorCategoryStorage, component, operation)
}

func NewLLMError(component, operation string, err error) *AppError {
	return WrapError(err, ErrorCategoryLLM, component, operation)
}

func NewConfigurationError(component, operation, message string) *AppError {
	return NewAppError(ErrorCategoryConfiguration, component, operation, message)
}

func NewRateLimitError(component, operation, message string) *AppError {
	return NewAppError(ErrorCategoryRateLimit, component, operation, message)
}
