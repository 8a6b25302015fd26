package store

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeDocs(texts ...string) []*Document {
	docs := make([]*Document, len(texts))
	for i, text := range texts {
		docs[i] = &Document{
			Position: i,
			ID:       string(rune('A' + i)),
			Text:     text,
		}
	}
	return docs
}

func TestMemBM25Index_ScoresCoverWholeCorpus(t *testing.T) {
	idx := NewMemBM25Index(DefaultBM25Config())
	require.NoError(t, idx.Build(makeDocs(
		"laptop with fast processor",
		"what is the return policy",
		"smartphone with great camera",
	)))

	scores := idx.Scores("return policy")

	// Dense vector: one score per document, in insertion order.
	require.Len(t, scores, 3)
	assert.Zero(t, scores[0])
	assert.Greater(t, scores[1], 0.0)
	assert.Zero(t, scores[2])
}

func TestMemBM25Index_TermFrequencySaturation(t *testing.T) {
	idx := NewMemBM25Index(DefaultBM25Config())
	require.NoError(t, idx.Build(makeDocs(
		"warranty",
		"warranty warranty warranty warranty",
	)))

	scores := idx.Scores("warranty")

	// More occurrences score higher, but sub-linearly (k1 saturation).
	assert.Greater(t, scores[1], scores[0])
	assert.Less(t, scores[1], 4*scores[0])
}

func TestMemBM25Index_IDFFormula(t *testing.T) {
	// Three docs, term "rare" in exactly one.
	idx := NewMemBM25Index(BM25Config{K1: 1.5, B: 0.75})
	require.NoError(t, idx.Build(makeDocs("rare", "other", "third")))

	scores := idx.Scores("rare")

	// All docs have length 1 == avgdl, so the normalizer is 1 and
	// score = idf * tf*(k1+1)/(tf+k1) with tf=1.
	idf := math.Log((3.0-1+0.5)/(1+0.5) + 1)
	want := idf * 2.5 / 2.5
	assert.InDelta(t, want, scores[0], 1e-9)
}

func TestMemBM25Index_UnknownTermsContributeZero(t *testing.T) {
	idx := NewMemBM25Index(DefaultBM25Config())
	require.NoError(t, idx.Build(makeDocs("laptop computer", "tablet device")))

	scores := idx.Scores("xylophone quartz")

	require.Len(t, scores, 2)
	assert.Equal(t, []float64{0, 0}, scores)
}

func TestMemBM25Index_EmptyCorpus(t *testing.T) {
	idx := NewMemBM25Index(DefaultBM25Config())
	require.NoError(t, idx.Build(nil))

	assert.Empty(t, idx.Scores("anything"))
	assert.Equal(t, 0, idx.Stats().DocumentCount)
}

func TestMemBM25Index_BuildReplacesContents(t *testing.T) {
	idx := NewMemBM25Index(DefaultBM25Config())
	require.NoError(t, idx.Build(makeDocs("old corpus text")))
	require.NoError(t, idx.Build(makeDocs("new words", "entirely different")))

	scores := idx.Scores("corpus")
	require.Len(t, scores, 2)
	assert.Equal(t, []float64{0, 0}, scores)
	assert.Equal(t, 2, idx.Stats().DocumentCount)
}

func TestMemBM25Index_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexical.gob")

	idx := NewMemBM25Index(BM25Config{K1: 1.2, B: 0.6})
	require.NoError(t, idx.Build(makeDocs(
		"laptop with 16GB RAM",
		"what is the return policy",
	)))
	want := idx.Scores("return policy laptop")
	require.NoError(t, idx.Save(path))

	loaded := NewMemBM25Index(DefaultBM25Config())
	require.NoError(t, loaded.Load(path))

	assert.Equal(t, want, loaded.Scores("return policy laptop"))
	assert.Equal(t, idx.Stats(), loaded.Stats())
}

func TestMemBM25Index_ClosedIndex(t *testing.T) {
	idx := NewMemBM25Index(DefaultBM25Config())
	require.NoError(t, idx.Build(makeDocs("some text")))
	require.NoError(t, idx.Close())

	assert.Error(t, idx.Build(makeDocs("more")))
	assert.Empty(t, idx.Scores("some"))
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"lowercases", "Return POLICY", []string{"return", "policy"}},
		{"strips punctuation", "16GB, RAM - $999!", []string{"16gb", "ram", "999"}},
		{"empty input", "", nil},
		{"only punctuation", "?!...", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input))
		})
	}
}
