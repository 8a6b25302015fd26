package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"

	"github.com/askcatalog/askcatalog/internal/config"
	"github.com/askcatalog/askcatalog/internal/corpus"
	"github.com/askcatalog/askcatalog/internal/embed"
	"github.com/askcatalog/askcatalog/internal/errors"
	"github.com/askcatalog/askcatalog/internal/store"
)

// On-disk layout under <persist_dir>:
//
//	metadata.db                   shared metadata database
//	<collection>/lexical.gob      BM25 index snapshot
//	<collection>/vectors.hnsw     HNSW graph (+ .meta sidecar)
//	<collection>/.build.lock      build lock file
const (
	metadataFile = "metadata.db"
	lexicalFile  = "lexical.gob"
	vectorFile   = "vectors.hnsw"
	lockFile     = ".build.lock"
)

// Stats are collection health statistics.
type Stats struct {
	VectorCount          int `json:"vector_count"`
	LexicalDocumentCount int `json:"lexical_document_count"`
	TotalDocuments       int `json:"total_documents"`
}

// Manager decides once per process whether to build or reuse persisted
// index state for a collection.
type Manager struct {
	cfg      *config.Config
	embedder embed.Embedder
}

// NewManager creates a lifecycle manager.
func NewManager(cfg *config.Config, embedder embed.Embedder) *Manager {
	return &Manager{cfg: cfg, embedder: embedder}
}

// Handle is a fully built or loaded collection, ready for querying.
type Handle struct {
	Collection string
	Lexical    store.LexicalIndex
	Vector     store.VectorStore
	Metadata   store.MetadataStore

	lock *flock.Flock
}

// Stats reports collection health statistics.
func (h *Handle) Stats(ctx context.Context) (*Stats, error) {
	total, err := h.Metadata.Count(ctx, h.Collection)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	lexicalCount := 0
	if stats := h.Lexical.Stats(); stats != nil {
		lexicalCount = stats.DocumentCount
	}

	return &Stats{
		VectorCount:          h.Vector.Count(),
		LexicalDocumentCount: lexicalCount,
		TotalDocuments:       total,
	}, nil
}

// Close releases the stores and the build lock.
func (h *Handle) Close() error {
	var firstErr error
	for _, c := range []func() error{h.Lexical.Close, h.Vector.Close, h.Metadata.Close} {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if h.lock != nil {
		if err := h.lock.Unlock(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *Manager) collectionDir() string {
	return filepath.Join(m.cfg.Index.PersistDir, m.cfg.Index.Collection)
}

// acquireLock takes the collection build lock without blocking.
func (m *Manager) acquireLock() (*flock.Flock, error) {
	dir := m.collectionDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create collection directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire build lock: %w", err)
	}
	if !locked {
		return nil, errors.New(errors.ErrCodeIndexLocked,
			fmt.Sprintf("collection %q is locked by another process", m.cfg.Index.Collection), nil)
	}
	return lock, nil
}

// BuildOrLoad returns a query-ready handle for the collection. When the
// persisted vector store already holds vectors and force is false, the
// build is skipped and the existing state is reused; otherwise the
// collection is rebuilt from records in full.
func (m *Manager) BuildOrLoad(ctx context.Context, records []corpus.Record, force bool) (*Handle, error) {
	lock, err := m.acquireLock()
	if err != nil {
		return nil, err
	}

	handle, err := m.buildOrLoadLocked(ctx, records, force)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	handle.lock = lock
	return handle, nil
}

func (m *Manager) buildOrLoadLocked(ctx context.Context, records []corpus.Record, force bool) (*Handle, error) {
	if !force {
		handle, err := m.tryLoad(ctx)
		if err != nil {
			return nil, err
		}
		if handle != nil {
			slog.Info("reusing existing index",
				slog.String("collection", m.cfg.Index.Collection),
				slog.Int("vectors", handle.Vector.Count()))
			return handle, nil
		}
	}

	return m.build(ctx, records)
}

// Open loads existing persisted state for querying. It never builds.
func (m *Manager) Open(ctx context.Context) (*Handle, error) {
	handle, err := m.tryLoad(ctx)
	if err != nil {
		return nil, err
	}
	if handle == nil {
		return nil, errors.New(errors.ErrCodeCorpusNotFound,
			fmt.Sprintf("collection %q has no persisted index, run 'askcatalog index' first",
				m.cfg.Index.Collection), nil)
	}
	return handle, nil
}

// tryLoad loads persisted state if the count-based guard passes: a saved
// vector store with at least one vector marks a completed build. Returns
// (nil, nil) when there is nothing to reuse.
func (m *Manager) tryLoad(ctx context.Context) (*Handle, error) {
	dir := m.collectionDir()
	vectorPath := filepath.Join(dir, vectorFile)

	if _, err := os.Stat(vectorPath); err != nil {
		return nil, nil
	}

	dims, err := store.ReadHNSWStoreDimensions(vectorPath)
	if err != nil || dims == 0 {
		return nil, nil
	}

	vector, err := store.NewHNSWStore(store.DefaultVectorStoreConfig(dims))
	if err != nil {
		return nil, err
	}
	if err := vector.Load(vectorPath); err != nil {
		_ = vector.Close()
		return nil, errors.New(errors.ErrCodeCorruptIndex,
			"failed to load vector store", err)
	}
	if vector.Count() == 0 {
		// An interrupted build leaves an empty graph; rebuild.
		_ = vector.Close()
		return nil, nil
	}

	lexical := store.NewMemBM25Index(store.BM25Config{
		K1: m.cfg.Search.BM25K1,
		B:  m.cfg.Search.BM25B,
	})
	if err := lexical.Load(filepath.Join(dir, lexicalFile)); err != nil {
		_ = vector.Close()
		_ = lexical.Close()
		return nil, errors.New(errors.ErrCodeCorruptIndex,
			"failed to load lexical index", err)
	}

	metadata, err := store.NewSQLiteMetadataStore(filepath.Join(m.cfg.Index.PersistDir, metadataFile))
	if err != nil {
		_ = vector.Close()
		_ = lexical.Close()
		return nil, err
	}

	handle := &Handle{
		Collection: m.cfg.Index.Collection,
		Lexical:    lexical,
		Vector:     vector,
		Metadata:   metadata,
	}

	// Changing the embedding dimension invalidates every stored vector.
	if embedderDims := m.embedder.Dimensions(); embedderDims > 0 && embedderDims != dims {
		_ = handle.Close()
		return nil, errors.New(errors.ErrCodeDimensionChange,
			fmt.Sprintf("collection was built with %d-dimensional embeddings but the provider produces %d, run 'askcatalog index --force'",
				dims, embedderDims), nil)
	}

	checker := NewConsistencyChecker(metadata, lexical, vector, m.cfg.Index.Collection)
	if err := checker.Verify(ctx); err != nil {
		_ = handle.Close()
		return nil, err
	}

	return handle, nil
}

// build rebuilds the collection from scratch. The build is all-or-nothing:
// embeddings are computed before any store is mutated, and the vector
// store is persisted last, so the count-based guard only passes once every
// store has been written.
func (m *Manager) build(ctx context.Context, records []corpus.Record) (*Handle, error) {
	collection := m.cfg.Index.Collection
	start := time.Now()

	docs, err := corpus.ToDocuments(records)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}

	// A provider failure here aborts the whole build.
	vectors, err := m.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, errors.ProviderError("failed to embed corpus", err)
	}

	dims := m.embedder.Dimensions()
	if dims == 0 && len(vectors) > 0 {
		dims = len(vectors[0])
	}
	if dims == 0 {
		// Empty corpus with an auto-detecting provider: any positive
		// dimension works, no vector is ever stored or searched.
		dims = 1
	}

	metadata, err := store.NewSQLiteMetadataStore(filepath.Join(m.cfg.Index.PersistDir, metadataFile))
	if err != nil {
		return nil, err
	}

	handle, err := m.buildStores(ctx, metadata, docs, vectors, dims)
	if err != nil {
		_ = metadata.Close()
		return nil, err
	}

	slog.Info("index build completed",
		slog.String("collection", collection),
		slog.Int("documents", len(docs)),
		slog.Duration("elapsed", time.Since(start)))

	return handle, nil
}

func (m *Manager) buildStores(
	ctx context.Context,
	metadata store.MetadataStore,
	docs []*store.Document,
	vectors [][]float32,
	dims int,
) (*Handle, error) {
	collection := m.cfg.Index.Collection
	dir := m.collectionDir()

	if err := metadata.Clear(ctx, collection); err != nil {
		return nil, errors.New(errors.ErrCodeBuildFailed, "failed to clear old metadata", err)
	}
	if err := metadata.SaveDocuments(ctx, collection, docs); err != nil {
		return nil, errors.New(errors.ErrCodeBuildFailed, "failed to save documents", err)
	}
	if err := metadata.SetState(ctx, store.StateKey(collection, store.StateKeyEmbeddingModel),
		m.embedder.ModelName()); err != nil {
		return nil, errors.New(errors.ErrCodeBuildFailed, "failed to record embedding model", err)
	}
	if err := metadata.SetState(ctx, store.StateKey(collection, store.StateKeyEmbeddingDimension),
		strconv.Itoa(dims)); err != nil {
		return nil, errors.New(errors.ErrCodeBuildFailed, "failed to record embedding dimension", err)
	}

	lexical := store.NewMemBM25Index(store.BM25Config{
		K1: m.cfg.Search.BM25K1,
		B:  m.cfg.Search.BM25B,
	})
	if err := lexical.Build(docs); err != nil {
		_ = lexical.Close()
		return nil, errors.New(errors.ErrCodeBuildFailed, "failed to build lexical index", err)
	}
	if err := lexical.Save(filepath.Join(dir, lexicalFile)); err != nil {
		_ = lexical.Close()
		return nil, errors.New(errors.ErrCodeBuildFailed, "failed to save lexical index", err)
	}

	vector, err := store.NewHNSWStore(store.DefaultVectorStoreConfig(dims))
	if err != nil {
		_ = lexical.Close()
		return nil, err
	}

	positions := make([]uint64, len(docs))
	for i := range docs {
		positions[i] = uint64(i)
	}
	if err := vector.Add(ctx, positions, vectors); err != nil {
		_ = lexical.Close()
		_ = vector.Close()
		return nil, errors.New(errors.ErrCodeBuildFailed, "failed to add vectors", err)
	}

	// Persisted last: the reuse guard keys off this file.
	if err := vector.Save(filepath.Join(dir, vectorFile)); err != nil {
		_ = lexical.Close()
		_ = vector.Close()
		return nil, errors.New(errors.ErrCodeBuildFailed, "failed to save vector store", err)
	}

	handle := &Handle{
		Collection: collection,
		Lexical:    lexical,
		Vector:     vector,
		Metadata:   metadata,
	}

	checker := NewConsistencyChecker(metadata, lexical, vector, collection)
	if err := checker.Verify(ctx); err != nil {
		_ = lexical.Close()
		_ = vector.Close()
		return nil, err
	}

	return handle, nil
}

// Clear removes all persisted state for the collection: index files on
// disk plus metadata rows and state keys.
func (m *Manager) Clear(ctx context.Context) error {
	lock, err := m.acquireLock()
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	metadata, err := store.NewSQLiteMetadataStore(filepath.Join(m.cfg.Index.PersistDir, metadataFile))
	if err != nil {
		return err
	}
	defer func() { _ = metadata.Close() }()

	if err := metadata.Clear(ctx, m.cfg.Index.Collection); err != nil {
		return fmt.Errorf("clear metadata: %w", err)
	}

	dir := m.collectionDir()
	for _, name := range []string{lexicalFile, vectorFile, vectorFile + ".meta"} {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}

	slog.Info("collection cleared", slog.String("collection", m.cfg.Index.Collection))
	return nil
}
