// Package errors provides structured error handling for askcatalog.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (corpus files, persisted index state)
//   - 3XX: Embedding provider errors
//   - 4XX: Contract violations (caller input validation)
//   - 5XX: Internal errors, including index consistency failures
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryProvider indicates embedding provider errors.
	CategoryProvider Category = "PROVIDER"
	// CategoryContract indicates caller contract violations.
	CategoryContract Category = "CONTRACT"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates an unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates the operation failed but the process can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeCorpusNotFound = "ERR_201_CORPUS_NOT_FOUND"
	ErrCodeCorpusInvalid  = "ERR_202_CORPUS_INVALID"
	ErrCodeCorruptIndex   = "ERR_203_CORRUPT_INDEX"
	ErrCodeIndexLocked    = "ERR_204_INDEX_LOCKED"

	// Provider errors (300-399)
	ErrCodeProviderUnavailable = "ERR_301_PROVIDER_UNAVAILABLE"
	ErrCodeProviderResponse    = "ERR_302_PROVIDER_RESPONSE"
	ErrCodeEmbeddingFailed     = "ERR_303_EMBEDDING_FAILED"

	// Contract violations (400-499)
	ErrCodeInvalidAlpha    = "ERR_401_INVALID_ALPHA"
	ErrCodeInvalidTopK     = "ERR_402_INVALID_TOP_K"
	ErrCodeInvalidCorpus   = "ERR_403_INVALID_CORPUS"
	ErrCodeInvalidQuery    = "ERR_404_INVALID_QUERY"
	ErrCodeDimensionChange = "ERR_405_DIMENSION_CHANGE"

	// Internal errors (500-599)
	ErrCodeInternal     = "ERR_501_INTERNAL"
	ErrCodeInconsistent = "ERR_502_INDEX_INCONSISTENT"
	ErrCodeSearchFailed = "ERR_503_SEARCH_FAILED"
	ErrCodeBuildFailed  = "ERR_504_BUILD_FAILED"
)

// categoryFromCode extracts the category from an error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Numeric portion, e.g. "301" from "ERR_301_PROVIDER_UNAVAILABLE".
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryProvider
	case '4':
		return CategoryContract
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on the error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeCorruptIndex, ErrCodeInconsistent:
		// A corrupted or inconsistent index must never serve queries.
		return SeverityFatal
	}
	return SeverityError
}
