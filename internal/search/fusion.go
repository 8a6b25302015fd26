package search

import (
	"sort"

	"github.com/askcatalog/askcatalog/internal/store"
)

// WeightedFusion combines a semantic candidate shortlist with a dense
// lexical score vector into a single ranking.
//
// Each semantic candidate contributes alpha * similarity, where similarity
// is the cosine distance mapped to [0,1]. Every corpus position then
// receives (1-alpha) * (bm25 / max_bm25); positions outside the semantic
// shortlist enter the ranking through this lexical term alone. Ties keep
// insertion order: semantic candidates in shortlist order first, then
// lexical-only positions in corpus order.
type WeightedFusion struct {
	Alpha float64
}

// NewWeightedFusion creates a fusion instance with the given semantic
// weight. Alpha is assumed already validated.
func NewWeightedFusion(alpha float64) *WeightedFusion {
	return &WeightedFusion{Alpha: alpha}
}

// Fuse merges semantic candidates and the full lexical score vector,
// returning at most topK entries with fused score strictly greater than
// zero, sorted by fused score descending.
func (f *WeightedFusion) Fuse(
	semantic []*store.VectorResult,
	lexical []float64,
	topK int,
) []*FusedEntry {
	if len(semantic) == 0 && len(lexical) == 0 {
		return []*FusedEntry{}
	}

	// Normalize the lexical vector by its maximum. A zero maximum keeps
	// the divisor at 1 to avoid dividing by zero; all entries stay zero.
	maxLex := 0.0
	for _, s := range lexical {
		if s > maxLex {
			maxLex = s
		}
	}
	divisor := maxLex
	if divisor == 0 {
		divisor = 1.0
	}

	entries := make([]*FusedEntry, 0, len(lexical))
	byPosition := make(map[int]*FusedEntry, len(semantic))

	// Semantic candidates seed the accumulator in shortlist order.
	for _, r := range semantic {
		pos := int(r.Position)
		if _, exists := byPosition[pos]; exists {
			continue
		}
		entry := &FusedEntry{
			Position:      pos,
			SemanticScore: f.Alpha * float64(r.Score),
		}
		entry.FusedScore = entry.SemanticScore
		byPosition[pos] = entry
		entries = append(entries, entry)
	}

	// Every corpus position receives the weighted lexical contribution;
	// positions without a semantic entry are appended in corpus order.
	lexWeight := 1 - f.Alpha
	for pos, score := range lexical {
		weighted := lexWeight * (score / divisor)
		if entry, ok := byPosition[pos]; ok {
			entry.LexicalScore = weighted
			entry.FusedScore += weighted
			continue
		}
		if weighted == 0 {
			continue
		}
		entry := &FusedEntry{
			Position:     pos,
			LexicalScore: weighted,
			FusedScore:   weighted,
		}
		byPosition[pos] = entry
		entries = append(entries, entry)
	}

	// Stable sort keeps insertion order on equal scores.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].FusedScore > entries[j].FusedScore
	})

	// Keep the top entries with strictly positive score. Zero-score
	// entries never fill the quota.
	results := make([]*FusedEntry, 0, topK)
	for _, entry := range entries {
		if entry.FusedScore <= 0 {
			break
		}
		results = append(results, entry)
		if len(results) == topK {
			break
		}
	}

	return results
}
