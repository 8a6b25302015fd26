// Package index manages the lifecycle of a collection: building or
// reusing persisted state, health statistics, and cross-store
// consistency checking.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/askcatalog/askcatalog/internal/errors"
	"github.com/askcatalog/askcatalog/internal/store"
)

// CheckResult contains the outcome of a consistency check.
type CheckResult struct {
	// MetadataCount is the number of metadata rows (source of truth).
	MetadataCount int
	// LexicalCount is the number of documents in the lexical index.
	LexicalCount int
	// VectorCount is the number of stored vectors.
	VectorCount int
	// Duration is how long the check took.
	Duration time.Duration
}

// Consistent reports whether all three sides agree.
func (r *CheckResult) Consistent() bool {
	return r.MetadataCount == r.LexicalCount && r.MetadataCount == r.VectorCount
}

// ConsistencyChecker validates that the lexical index, vector store, and
// metadata rows of a collection describe the same document set. Any
// divergence is fatal: an inconsistent collection must not serve queries,
// since positional fusion would silently join unrelated documents.
type ConsistencyChecker struct {
	metadata   store.MetadataStore
	lexical    store.LexicalIndex
	vector     store.VectorStore
	collection string
}

// NewConsistencyChecker creates a checker over one collection's stores.
func NewConsistencyChecker(
	metadata store.MetadataStore,
	lexical store.LexicalIndex,
	vector store.VectorStore,
	collection string,
) *ConsistencyChecker {
	return &ConsistencyChecker{
		metadata:   metadata,
		lexical:    lexical,
		vector:     vector,
		collection: collection,
	}
}

// Check compares document counts across the three stores.
func (c *ConsistencyChecker) Check(ctx context.Context) (*CheckResult, error) {
	start := time.Now()

	metadataCount, err := c.metadata.Count(ctx, c.collection)
	if err != nil {
		return nil, fmt.Errorf("count metadata rows: %w", err)
	}

	lexicalCount := 0
	if stats := c.lexical.Stats(); stats != nil {
		lexicalCount = stats.DocumentCount
	}

	result := &CheckResult{
		MetadataCount: metadataCount,
		LexicalCount:  lexicalCount,
		VectorCount:   c.vector.Count(),
		Duration:      time.Since(start),
	}

	if !result.Consistent() {
		slog.Debug("index counts mismatch",
			slog.String("collection", c.collection),
			slog.Int("metadata", result.MetadataCount),
			slog.Int("lexical", result.LexicalCount),
			slog.Int("vector", result.VectorCount))
	}

	return result, nil
}

// Verify runs the count quick-check followed by the full document-set
// check, converting any mismatch into a consistency error.
func (c *ConsistencyChecker) Verify(ctx context.Context) error {
	result, err := c.Check(ctx)
	if err != nil {
		return err
	}
	if !result.Consistent() {
		return errors.ConsistencyError(fmt.Sprintf(
			"collection %q store counts diverge: metadata=%d lexical=%d vector=%d",
			c.collection, result.MetadataCount, result.LexicalCount, result.VectorCount))
	}
	return c.verifyDocuments(ctx, result.MetadataCount)
}

// verifyDocuments checks that the metadata rows describe exactly the
// document set the positional indices were built over: unique IDs and
// positions covering 0..n-1 with no gaps. Counts alone cannot catch
// equal-sized but divergent states.
func (c *ConsistencyChecker) verifyDocuments(ctx context.Context, n int) error {
	if n == 0 {
		return nil
	}

	ids, err := c.metadata.AllIDs(ctx, c.collection)
	if err != nil {
		return fmt.Errorf("list document ids: %w", err)
	}
	if len(ids) != n {
		return errors.ConsistencyError(fmt.Sprintf(
			"collection %q has %d ids for %d metadata rows", c.collection, len(ids), n))
	}

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return errors.ConsistencyError(fmt.Sprintf(
				"collection %q has duplicate document id %q", c.collection, id))
		}
		seen[id] = true
	}

	positions := make([]int, n)
	for i := range positions {
		positions[i] = i
	}
	docs, err := c.metadata.GetByPositions(ctx, c.collection, positions)
	if err != nil {
		return fmt.Errorf("fetch documents by position: %w", err)
	}
	if len(docs) != n {
		return errors.ConsistencyError(fmt.Sprintf(
			"collection %q positions are not contiguous: %d of %d rows found in 0..%d",
			c.collection, len(docs), n, n-1))
	}

	return nil
}
