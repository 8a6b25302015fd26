package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryAndSeverity(t *testing.T) {
	tests := []struct {
		code     string
		category Category
		severity Severity
	}{
		{ErrCodeConfigInvalid, CategoryConfig, SeverityError},
		{ErrCodeCorpusNotFound, CategoryIO, SeverityError},
		{ErrCodeCorruptIndex, CategoryIO, SeverityFatal},
		{ErrCodeEmbeddingFailed, CategoryProvider, SeverityError},
		{ErrCodeInvalidAlpha, CategoryContract, SeverityError},
		{ErrCodeInconsistent, CategoryInternal, SeverityFatal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "message", nil)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
		})
	}
}

func TestErrorChainHelpers(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := ProviderError("embedding failed", cause)

	// Helpers see through fmt.Errorf wrapping.
	wrapped := fmt.Errorf("query failed: %w", err)

	assert.True(t, IsProvider(wrapped))
	assert.False(t, IsContractViolation(wrapped))
	assert.Equal(t, ErrCodeEmbeddingFailed, GetCode(wrapped))
	assert.ErrorIs(t, wrapped, err)
	require.ErrorContains(t, err, "embedding failed")
	assert.Equal(t, cause, err.Unwrap())
}

func TestContractViolation(t *testing.T) {
	err := ContractViolation(ErrCodeInvalidAlpha, "alpha must be in [0,1]")

	assert.True(t, IsContractViolation(err))
	assert.False(t, IsFatal(err))
	assert.Equal(t, ErrCodeInvalidAlpha, GetCode(err))
}

func TestConsistencyErrorIsFatal(t *testing.T) {
	err := ConsistencyError("counts diverge")

	assert.True(t, IsFatal(err))
	assert.Equal(t, CategoryInternal, GetCategory(err))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrCodeBuildFailed, "build failed", nil).
		WithDetail("collection", "catalog").
		WithDetail("documents", "42")

	assert.Equal(t, "catalog", err.Details["collection"])
	assert.Equal(t, "42", err.Details["documents"])
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))

	inner := fmt.Errorf("disk full")
	err := Wrap(ErrCodeBuildFailed, inner)
	require.NotNil(t, err)
	assert.Equal(t, "disk full", err.Message)
	assert.ErrorIs(t, err, inner)
}
