package errors

import (
	stderrors "errors"
	"fmt"
)

// Error is the structured error type for askcatalog.
// It provides rich context for error handling, logging, and user presentation.
type Error struct {
	// Code is the unique error code (e.g., "ERR_301_PROVIDER_UNAVAILABLE").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Provider, ...).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with *Error.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates an Error from an existing error.
// The error's message becomes the Error message.
func Wrap(code string, err error) *Error {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ProviderError creates an embedding-provider error. Provider errors are
// fatal during index builds and abort the query they occur in; they are
// never silently swallowed or downgraded to a lexical-only ranking.
func ProviderError(message string, cause error) *Error {
	return New(ErrCodeEmbeddingFailed, message, cause)
}

// ContractViolation creates a caller contract violation error.
// These are rejected synchronously before any index mutation or query.
func ContractViolation(code, message string) *Error {
	return New(code, message, nil)
}

// ConsistencyError creates an index consistency error. The lexical and
// semantic sides of a collection must index exactly the same document set;
// any divergence halts further queries against that collection.
func ConsistencyError(message string) *Error {
	return New(ErrCodeInconsistent, message, nil)
}

// IsProvider reports whether err is (or wraps) a provider error.
func IsProvider(err error) bool {
	return GetCategory(err) == CategoryProvider
}

// IsContractViolation reports whether err is (or wraps) a contract violation.
func IsContractViolation(err error) bool {
	return GetCategory(err) == CategoryContract
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	if ae := asError(err); ae != nil {
		return ae.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from an Error anywhere in the chain.
// Returns empty string if no Error is found.
func GetCode(err error) string {
	if ae := asError(err); ae != nil {
		return ae.Code
	}
	return ""
}

// GetCategory extracts the category from an Error anywhere in the chain.
// Returns empty string if no Error is found.
func GetCategory(err error) Category {
	if ae := asError(err); ae != nil {
		return ae.Category
	}
	return ""
}

// asError finds the first *Error in err's chain.
func asError(err error) *Error {
	var ae *Error
	if stderrors.As(err, &ae) {
		return ae
	}
	return nil
}
