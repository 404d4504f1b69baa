package errors

import (
	"fmt"
)

// FolioError is the structured error type for folio.
// It provides rich context for error handling, logging, and user presentation.
type FolioError struct {
	// Code is the unique error code (e.g., "ERR_201_FILE_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Network, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *FolioError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *FolioError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with FolioError.
func (e *FolioError) Is(target error) bool {
	if t, ok := target.(*FolioError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *FolioError) WithDetail(key, value string) *FolioError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *FolioError) WithSuggestion(suggestion string) *FolioError {
	e.Suggestion = suggestion
	return e
}

// New creates a new FolioError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *FolioError {
	return &FolioError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a FolioError from an existing error.
// The error's message becomes the FolioError message.
func Wrap(code string, err error) *FolioError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *FolioError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IOError creates an I/O-related error.
func IOError(message string, cause error) *FolioError {
	return New(ErrCodeFileNotFound, message, cause)
}

// NetworkError creates a network-related error.
// Network errors are typically retryable.
func NetworkError(message string, cause error) *FolioError {
	return New(ErrCodeNetworkUnavailable, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *FolioError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *FolioError {
	return New(ErrCodeInternal, message, cause)
}

// IsRetryable checks if an error is retryable.
// Returns true if the error chain holds a FolioError with Retryable set.
func IsRetryable(err error) bool {
	if fe, ok := As(err); ok {
		return fe.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	if fe, ok := As(err); ok {
		return fe.Severity == SeverityFatal
	}
	return false
}

// HasCode reports whether any FolioError in err's chain carries code.
func HasCode(err error, code string) bool {
	for err != nil {
		if fe, ok := err.(*FolioError); ok && fe.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// As returns the first FolioError in err's chain.
func As(err error) (*FolioError, bool) {
	for err != nil {
		if fe, ok := err.(*FolioError); ok {
			return fe, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// GetCode extracts the error code from a FolioError.
// Returns empty string if not a FolioError.
func GetCode(err error) string {
	if fe, ok := As(err); ok {
		return fe.Code
	}
	return ""
}

// GetCategory extracts the category from a FolioError.
// Returns empty string if not a FolioError.
func GetCategory(err error) Category {
	if fe, ok := As(err); ok {
		return fe.Category
	}
	return ""
}
