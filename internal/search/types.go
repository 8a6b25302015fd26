// Package search implements hybrid retrieval: a semantic nearest-neighbor
// leg and a dense BM25 lexical leg, fused by alpha-weighted score
// combination into a single ranking.
package search

import (
	"github.com/askcatalog/askcatalog/internal/store"
)

// Default search parameters.
const (
	// DefaultAlpha is the default semantic weight.
	DefaultAlpha = 0.7

	// DefaultTopK is the default number of results.
	DefaultTopK = 5

	// overfetchFactor controls semantic candidate over-fetching. Pulling
	// more neighbors than top_k improves fusion quality because the
	// lexical signal can promote documents from deeper in the shortlist.
	overfetchFactor = 2
)

// ScoredResult is one entry of a fused ranking.
type ScoredResult struct {
	// Document carries the original text and metadata.
	Document *store.Document

	// FusedScore is the combined score, in [0, ~1]. Not a probability.
	FusedScore float64

	// SemanticScore is the weighted semantic contribution (0 when the
	// document was outside the semantic shortlist).
	SemanticScore float64

	// LexicalScore is the weighted, normalized BM25 contribution.
	LexicalScore float64
}

// FusedEntry is an intermediate fusion result, before document metadata
// is attached.
type FusedEntry struct {
	Position      int
	FusedScore    float64
	SemanticScore float64
	LexicalScore  float64
}
