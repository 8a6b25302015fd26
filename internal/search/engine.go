package search

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/askcatalog/askcatalog/internal/embed"
	"github.com/askcatalog/askcatalog/internal/errors"
	"github.com/askcatalog/askcatalog/internal/store"
)

// Engine executes hybrid queries against one built collection.
//
// Queries are read-only and may run concurrently; the engine assumes the
// collection was fully built before the engine was constructed.
type Engine struct {
	embedder   embed.Embedder
	lexical    store.LexicalIndex
	vector     store.VectorStore
	metadata   store.MetadataStore
	collection string
}

// NewEngine creates a search engine over a built collection.
func NewEngine(
	embedder embed.Embedder,
	lexical store.LexicalIndex,
	vector store.VectorStore,
	metadata store.MetadataStore,
	collection string,
) *Engine {
	return &Engine{
		embedder:   embedder,
		lexical:    lexical,
		vector:     vector,
		metadata:   metadata,
		collection: collection,
	}
}

// Search runs a hybrid query and returns the fused ranking.
//
// An embedding failure aborts the query: the engine never degrades to a
// lexical-only ranking, since that would silently change semantics.
func (e *Engine) Search(ctx context.Context, query string, opts Options) ([]*ScoredResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateQuery(query); err != nil {
		return nil, err
	}

	// An empty collection answers every query with an empty list.
	if e.vector.Count() == 0 {
		return []*ScoredResult{}, nil
	}

	start := time.Now()

	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, errors.ProviderError("failed to embed query", err)
	}

	// Both legs are read-only, so they run in parallel.
	var (
		semantic []*store.VectorResult
		lexical  []float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		results, err := e.vector.Search(gctx, queryVec, opts.TopK*overfetchFactor)
		if err != nil {
			return errors.New(errors.ErrCodeSearchFailed, "semantic search failed", err)
		}
		semantic = results
		return nil
	})
	g.Go(func() error {
		lexical = e.lexical.Scores(query)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fused := NewWeightedFusion(opts.Alpha).Fuse(semantic, lexical, opts.TopK)

	results, err := e.attachDocuments(ctx, fused)
	if err != nil {
		return nil, err
	}

	slog.Debug("hybrid search completed",
		slog.String("collection", e.collection),
		slog.Int("semantic_candidates", len(semantic)),
		slog.Int("results", len(results)),
		slog.Duration("elapsed", time.Since(start)))

	return results, nil
}

// attachDocuments maps fused positions back to stored documents.
func (e *Engine) attachDocuments(ctx context.Context, fused []*FusedEntry) ([]*ScoredResult, error) {
	if len(fused) == 0 {
		return []*ScoredResult{}, nil
	}

	positions := make([]int, len(fused))
	for i, entry := range fused {
		positions[i] = entry.Position
	}

	docs, err := e.metadata.GetByPositions(ctx, e.collection, positions)
	if err != nil {
		return nil, errors.New(errors.ErrCodeSearchFailed, "failed to load documents", err)
	}

	byPosition := make(map[int]*store.Document, len(docs))
	for _, doc := range docs {
		byPosition[doc.Position] = doc
	}

	results := make([]*ScoredResult, 0, len(fused))
	for _, entry := range fused {
		doc, ok := byPosition[entry.Position]
		if !ok {
			// A ranked position with no metadata row means the stores
			// diverged; this index must not keep serving queries.
			return nil, errors.ConsistencyError(
				"ranked document has no metadata row")
		}
		results = append(results, &ScoredResult{
			Document:      doc,
			FusedScore:    entry.FusedScore,
			SemanticScore: entry.SemanticScore,
			LexicalScore:  entry.LexicalScore,
		})
	}

	return results, nil
}
