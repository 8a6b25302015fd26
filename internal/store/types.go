// Package store provides the persistence layer for indexed collections:
// a dense-scoring BM25 lexical index, an HNSW vector store, and a SQLite
// metadata store. The three sides of a collection are joined by document
// position (insertion order), which is assigned once at build time.
package store

import (
	"context"
	"fmt"
)

// Document is one indexed item of a collection. Documents are immutable
// once indexed; Position is the stable positional index used as the join
// key between the lexical and semantic sides.
type Document struct {
	Position int            // insertion order within the collection
	ID       string         // unique within the collection
	Text     string         // indexed content
	Metadata map[string]any // arbitrary scalar or nested values
}

// State keys for the metadata store, scoped per collection via StateKey.
const (
	// StateKeyEmbeddingModel records the embedding model a collection was
	// built with.
	StateKeyEmbeddingModel = "embedding_model"
	// StateKeyEmbeddingDimension records the embedding dimension a
	// collection was built with, for mismatch detection on load.
	StateKeyEmbeddingDimension = "embedding_dimension"
)

// StateKey builds a collection-scoped state key.
func StateKey(collection, key string) string {
	return collection + "/" + key
}

// LexicalStats provides statistics about the lexical index.
type LexicalStats struct {
	DocumentCount int
	TermCount     int
	AvgDocLength  float64
}

// LexicalIndex ranks documents by BM25 term overlap with a query.
//
// Unlike a top-k search index, Scores returns the full score distribution
// over the corpus: one entry per indexed document, in insertion order.
// The fusion layer needs the whole vector to normalize correctly and to
// let documents outside the semantic shortlist enter the final ranking.
type LexicalIndex interface {
	// Build replaces the index contents with the given documents.
	// The build is all-or-nothing.
	Build(docs []*Document) error

	// Scores returns one BM25 score per indexed document, in insertion
	// order. Query terms absent from the corpus vocabulary contribute
	// zero; a query with no recognized terms yields an all-zero vector.
	Scores(query string) []float64

	// Stats returns index statistics.
	Stats() *LexicalStats

	// Persistence
	Save(path string) error
	Load(path string) error
	Close() error
}

// BM25Config configures the lexical index.
type BM25Config struct {
	// K1 is the term frequency saturation parameter (default: 1.5).
	K1 float64

	// B is the length normalization parameter (default: 0.75).
	B float64
}

// DefaultBM25Config returns the conventional BM25 constants.
func DefaultBM25Config() BM25Config {
	return BM25Config{
		K1: 1.5,
		B:  0.75,
	}
}

// VectorResult represents a single nearest-neighbor search result.
type VectorResult struct {
	Position uint64  // document position within the collection
	Distance float32 // cosine distance, 0 (identical) to 2 (opposite)
	Score    float32 // similarity 1 - distance/2, in [0,1]
}

// VectorStoreConfig configures the vector store.
type VectorStoreConfig struct {
	// Dimensions is the embedding dimension.
	Dimensions int

	// M is HNSW max connections per layer (default: 16).
	M int

	// EfSearch is HNSW query-time search width (default: 20).
	EfSearch int
}

// DefaultVectorStoreConfig returns sensible defaults for the vector store.
func DefaultVectorStoreConfig(dimensions int) VectorStoreConfig {
	return VectorStoreConfig{
		Dimensions: dimensions,
		M:          16,
		EfSearch:   20,
	}
}

// VectorStore answers nearest-neighbor queries by cosine distance over
// per-document embeddings, keyed by document position.
type VectorStore interface {
	// Add inserts vectors keyed by document position.
	Add(ctx context.Context, positions []uint64, vectors [][]float32) error

	// Search finds the k nearest neighbors to the query vector.
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)

	// Count returns the number of stored vectors.
	Count() int

	// Persistence
	Save(path string) error
	Load(path string) error
	Close() error
}

// MetadataStore persists document rows per collection and a small
// key-value state table. It is the source of truth for document identity
// and metadata; the lexical and vector indices hold only derived data.
type MetadataStore interface {
	// SaveDocuments inserts document rows for a collection.
	SaveDocuments(ctx context.Context, collection string, docs []*Document) error

	// GetByPositions fetches documents by position, in the given order.
	GetByPositions(ctx context.Context, collection string, positions []int) ([]*Document, error)

	// Count returns the number of documents in a collection.
	Count(ctx context.Context, collection string) (int, error)

	// AllIDs returns all document IDs in a collection, in position order.
	AllIDs(ctx context.Context, collection string) ([]string, error)

	// Clear removes all rows for a collection, including its state keys.
	Clear(ctx context.Context, collection string) error

	// State operations (key-value store for index bookkeeping).
	GetState(ctx context.Context, key string) (string, error)
	SetState(ctx context.Context, key, value string) error

	// Lifecycle
	Close() error
}

// ErrDimensionMismatch indicates a vector dimension mismatch.
type ErrDimensionMismatch struct {
	Expected int
	Got      int
}

func (e ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d (run 'askcatalog index --force')",
		e.Expected, e.Got)
}
