package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askcatalog/askcatalog/internal/store"
)

func vecResults(positions []uint64, scores []float32) []*store.VectorResult {
	results := make([]*store.VectorResult, len(positions))
	for i, pos := range positions {
		results[i] = &store.VectorResult{
			Position: pos,
			Distance: 2 * (1 - scores[i]),
			Score:    scores[i],
		}
	}
	return results
}

func TestWeightedFusion_CombinesBothSignals(t *testing.T) {
	f := NewWeightedFusion(0.7)

	semantic := vecResults([]uint64{0, 1}, []float32{0.9, 0.5})
	lexical := []float64{0, 4.0, 2.0}

	results := f.Fuse(semantic, lexical, 10)
	require.Len(t, results, 3)

	byPos := make(map[int]*FusedEntry)
	for _, r := range results {
		byPos[r.Position] = r
	}

	// Doc 0: semantic only.
	assert.InDelta(t, 0.7*0.9, byPos[0].FusedScore, 1e-6)
	// Doc 1: both signals, lexical normalized by max (4.0).
	assert.InDelta(t, 0.7*0.5+0.3*1.0, byPos[1].FusedScore, 1e-6)
	// Doc 2: lexical only, outside the semantic shortlist.
	assert.InDelta(t, 0.3*0.5, byPos[2].FusedScore, 1e-6)
}

func TestWeightedFusion_SortedDescendingAndCapped(t *testing.T) {
	f := NewWeightedFusion(0.5)

	semantic := vecResults([]uint64{0, 1, 2, 3}, []float32{0.2, 0.9, 0.5, 0.7})
	lexical := []float64{1, 2, 3, 4}

	results := f.Fuse(semantic, lexical, 2)
	require.Len(t, results, 2)
	assert.GreaterOrEqual(t, results[0].FusedScore, results[1].FusedScore)
}

func TestWeightedFusion_DropsZeroScores(t *testing.T) {
	f := NewWeightedFusion(0.5)

	// No semantic candidates, all-zero lexical vector: nothing survives
	// even though top_k would allow three results.
	results := f.Fuse(nil, []float64{0, 0, 0}, 3)
	assert.Empty(t, results)
}

func TestWeightedFusion_ZeroMaxLexicalDoesNotDivideByZero(t *testing.T) {
	f := NewWeightedFusion(0.7)

	semantic := vecResults([]uint64{0}, []float32{0.8})
	results := f.Fuse(semantic, []float64{0, 0}, 5)

	require.Len(t, results, 1)
	assert.InDelta(t, 0.7*0.8, results[0].FusedScore, 1e-6)
}

func TestWeightedFusion_AlphaOneIsPureSemantic(t *testing.T) {
	f := NewWeightedFusion(1.0)

	semantic := vecResults([]uint64{2, 0, 1}, []float32{0.9, 0.6, 0.3})
	// Lexical ranking would order docs the other way; with alpha=1 it
	// carries zero weight.
	lexical := []float64{1.0, 5.0, 0.1}

	results := f.Fuse(semantic, lexical, 3)
	require.Len(t, results, 3)
	assert.Equal(t, 2, results[0].Position)
	assert.Equal(t, 0, results[1].Position)
	assert.Equal(t, 1, results[2].Position)
	for _, r := range results {
		assert.Zero(t, r.LexicalScore)
	}
}

func TestWeightedFusion_AlphaZeroIsPureLexical(t *testing.T) {
	f := NewWeightedFusion(0.0)

	semantic := vecResults([]uint64{0, 1}, []float32{0.99, 0.98})
	lexical := []float64{0.5, 2.0, 1.0}

	results := f.Fuse(semantic, lexical, 3)
	require.Len(t, results, 3)
	assert.Equal(t, 1, results[0].Position)
	assert.Equal(t, 2, results[1].Position)
	assert.Equal(t, 0, results[2].Position)
	for _, r := range results {
		assert.Zero(t, r.SemanticScore)
	}
}

func TestWeightedFusion_AlphaZeroDropsLexicalZeroDocs(t *testing.T) {
	f := NewWeightedFusion(0.0)

	// Doc 0 is a semantic candidate but has zero lexical score; with
	// alpha=0 it must not appear.
	semantic := vecResults([]uint64{0}, []float32{0.95})
	lexical := []float64{0, 3.0}

	results := f.Fuse(semantic, lexical, 5)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Position)
}

func TestWeightedFusion_StableOrderOnTies(t *testing.T) {
	f := NewWeightedFusion(1.0)

	semantic := vecResults([]uint64{5, 3, 8}, []float32{0.5, 0.5, 0.5})
	results := f.Fuse(semantic, nil, 3)

	require.Len(t, results, 3)
	// Equal scores keep shortlist order.
	assert.Equal(t, 5, results[0].Position)
	assert.Equal(t, 3, results[1].Position)
	assert.Equal(t, 8, results[2].Position)
}

func TestWeightedFusion_EmptyInputs(t *testing.T) {
	f := NewWeightedFusion(0.7)
	assert.Empty(t, f.Fuse(nil, nil, 5))
}
