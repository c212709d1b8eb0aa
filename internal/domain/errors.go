package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeProvider      = "PROVIDER_ERROR"
	ErrCodeStore         = "STORE_ERROR"
	ErrCodeSend          = "SEND_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyQuestion = NewDomainError(ErrCodeValidation, "question is required")
	ErrEmptyContent  = NewDomainError(ErrCodeValidation, "content cannot be empty")
	ErrEmptySource   = NewDomainError(ErrCodeValidation, "source name is required")
)

// Store errors
var (
	ErrDimensionMismatch = NewDomainError(ErrCodeStore, "embedding dimension does not match store")
	ErrModelMismatch     = NewDomainError(ErrCodeStore, "snapshot was written with a different embedding model")
)

// NewProviderError wraps a provider failure
func NewProviderError(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeProvider, message, err)
}

// NewStoreError wraps a persistence failure
func NewStoreError(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeStore, message, err)
}

// NewSendError wraps an outbound delivery failure
func NewSendError(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeSend, message, err)
}
