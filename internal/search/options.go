package search

import (
	"fmt"
	"strings"

	"github.com/askcatalog/askcatalog/internal/errors"
)

// Options are per-query search parameters.
type Options struct {
	// Alpha is the semantic weight in [0,1]. 1.0 ranks purely by
	// semantic similarity, 0.0 purely by BM25.
	Alpha float64

	// TopK is the maximum number of results to return.
	TopK int
}

// DefaultOptions returns the default search options.
func DefaultOptions() Options {
	return Options{
		Alpha: DefaultAlpha,
		TopK:  DefaultTopK,
	}
}

// Validate rejects out-of-contract parameters before any index work.
func (o Options) Validate() error {
	if o.Alpha < 0 || o.Alpha > 1 {
		return errors.ContractViolation(errors.ErrCodeInvalidAlpha,
			fmt.Sprintf("alpha must be in [0,1], got %g", o.Alpha))
	}
	if o.TopK <= 0 {
		return errors.ContractViolation(errors.ErrCodeInvalidTopK,
			fmt.Sprintf("top_k must be positive, got %d", o.TopK))
	}
	return nil
}

// ValidateQuery rejects blank queries.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return errors.ContractViolation(errors.ErrCodeInvalidQuery,
			"query must not be empty")
	}
	return nil
}
