package store

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
)

// posting records a term occurrence in one document.
type posting struct {
	Doc int // document position
	TF  int // term frequency within the document
}

// MemBM25Index is an in-memory BM25 index over a document collection.
//
// It scores with the Okapi BM25 function:
//
//	score(q, d) = sum over query terms t of
//	    IDF(t) * (tf * (k1+1)) / (tf + k1 * (1 - b + b * |d|/avgdl))
//
// where IDF(t) = ln((N - df + 0.5) / (df + 0.5) + 1), which is always
// non-negative. Scores covers the entire corpus, not a top-k shortlist.
type MemBM25Index struct {
	mu     sync.RWMutex
	config BM25Config

	postings  map[string][]posting // term -> documents containing it
	docLens   []int                // token count per document, by position
	avgDocLen float64
	closed    bool
}

// bm25Snapshot is the gob-serialized form of the index.
type bm25Snapshot struct {
	Config    BM25Config
	Postings  map[string][]posting
	DocLens   []int
	AvgDocLen float64
}

// Verify interface implementation at compile time.
var _ LexicalIndex = (*MemBM25Index)(nil)

// NewMemBM25Index creates an empty BM25 index.
func NewMemBM25Index(config BM25Config) *MemBM25Index {
	if config.K1 <= 0 {
		config.K1 = DefaultBM25Config().K1
	}
	if config.B <= 0 {
		config.B = DefaultBM25Config().B
	}
	return &MemBM25Index{
		config:   config,
		postings: make(map[string][]posting),
	}
}

// Build replaces the index contents with the given documents.
// Documents must be supplied in insertion order; their slice index becomes
// the position reported by Scores.
func (b *MemBM25Index) Build(docs []*Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("index is closed")
	}

	postings := make(map[string][]posting)
	docLens := make([]int, len(docs))
	totalLen := 0

	for i, doc := range docs {
		tokens := Tokenize(doc.Text)
		docLens[i] = len(tokens)
		totalLen += len(tokens)

		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		for term, n := range tf {
			postings[term] = append(postings[term], posting{Doc: i, TF: n})
		}
	}

	avg := 0.0
	if len(docs) > 0 {
		avg = float64(totalLen) / float64(len(docs))
	}

	b.postings = postings
	b.docLens = docLens
	b.avgDocLen = avg
	return nil
}

// Scores returns one BM25 score per indexed document, in insertion order.
// Terms absent from the corpus vocabulary contribute zero, never an error;
// a query with no recognized terms yields an all-zero vector.
func (b *MemBM25Index) Scores(query string) []float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := len(b.docLens)
	scores := make([]float64, n)
	if b.closed || n == 0 {
		return scores
	}

	k1 := b.config.K1
	bParam := b.config.B
	avg := b.avgDocLen
	if avg == 0 {
		avg = 1
	}

	for _, term := range Tokenize(query) {
		plist, ok := b.postings[term]
		if !ok {
			continue
		}

		df := float64(len(plist))
		idf := math.Log((float64(n)-df+0.5)/(df+0.5) + 1)

		for _, p := range plist {
			tf := float64(p.TF)
			norm := 1 - bParam + bParam*float64(b.docLens[p.Doc])/avg
			scores[p.Doc] += idf * tf * (k1 + 1) / (tf + k1*norm)
		}
	}

	return scores
}

// Stats returns index statistics.
func (b *MemBM25Index) Stats() *LexicalStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return &LexicalStats{}
	}

	return &LexicalStats{
		DocumentCount: len(b.docLens),
		TermCount:     len(b.postings),
		AvgDocLength:  b.avgDocLen,
	}
}

// Save persists the index to disk using an atomic temp-file rename.
func (b *MemBM25Index) Save(path string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("index is closed")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp index file: %w", err)
	}

	snap := bm25Snapshot{
		Config:    b.config,
		Postings:  b.postings,
		DocLens:   b.docLens,
		AvgDocLen: b.avgDocLen,
	}

	if err := gob.NewEncoder(file).Encode(snap); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("encode index: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close index file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Load replaces the index contents from a file written by Save.
func (b *MemBM25Index) Load(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("index is closed")
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open index file: %w", err)
	}
	defer file.Close()

	var snap bm25Snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return fmt.Errorf("decode index: %w", err)
	}

	b.config = snap.Config
	b.postings = snap.Postings
	b.docLens = snap.DocLens
	b.avgDocLen = snap.AvgDocLen
	if b.postings == nil {
		b.postings = make(map[string][]posting)
	}

	return nil
}

// Close releases resources.
func (b *MemBM25Index) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.postings = nil
	b.docLens = nil
	return nil
}
