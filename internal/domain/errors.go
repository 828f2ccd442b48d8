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
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConfiguration = "CONFIGURATION_ERROR"
	ErrCodeRetrieval     = "RETRIEVAL_ERROR"
	ErrCodeExtraction    = "EXTRACTION_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Configuration errors, fatal at startup
var (
	ErrDimensionMismatch  = NewDomainError(ErrCodeConfiguration, "vector index dimension does not match embedding configuration")
	ErrMissingOpenAIKey   = NewDomainError(ErrCodeConfiguration, "OPENAI_API_KEY is required")
	ErrInvalidChunkConfig = NewDomainError(ErrCodeConfiguration, "chunk size must be greater than overlap")
)

// Recoverable per-turn errors
var (
	ErrRetrievalFailed  = NewDomainError(ErrCodeRetrieval, "passage retrieval failed")
	ErrExtractionFailed = NewDomainError(ErrCodeExtraction, "specification extraction produced no usable fields")
)

// Validation errors
var (
	ErrEmptyMessage   = NewDomainError(ErrCodeValidation, "message cannot be empty")
	ErrEmptySessionID = NewDomainError(ErrCodeValidation, "session id cannot be empty")
	ErrEmptyQuery     = NewDomainError(ErrCodeValidation, "query cannot be empty")
)
