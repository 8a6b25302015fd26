package corpus

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askcatalog/askcatalog/internal/errors"
)

func TestToDocuments_AssignsPositionsInOrder(t *testing.T) {
	records := []Record{
		{ID: "P1", Kind: KindProduct, Text: "laptop"},
		{ID: "F1", Kind: KindFaq, Text: "return policy"},
	}

	docs, err := ToDocuments(records)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, 0, docs[0].Position)
	assert.Equal(t, 1, docs[1].Position)
	assert.Equal(t, "P1", docs[0].ID)
	assert.Equal(t, "product", docs[0].Metadata["type"])
}

func TestToDocuments_RejectsBadRecords(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
	}{
		{"empty id", []Record{{ID: "", Text: "x"}}},
		{"empty text", []Record{{ID: "a", Text: ""}}},
		{"duplicate id", []Record{{ID: "a", Text: "x"}, {ID: "a", Text: "y"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToDocuments(tt.records)
			require.Error(t, err)
			assert.True(t, errors.IsContractViolation(err))
		})
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")

	records := []Record{
		{ID: "P1", Kind: KindProduct, Text: "laptop",
			Meta: map[string]any{"row_data": map[string]any{"ram_gb": float64(16)}}},
		{ID: "F1", Kind: KindFaq, Text: "Question: hi\nAnswer: hello"},
	}
	require.NoError(t, Save(path, records))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, records[0].ID, loaded[0].ID)
	assert.Equal(t, records[0].Meta, loaded[0].Meta)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCorpusNotFound, errors.GetCode(err))
}

func TestChunk(t *testing.T) {
	t.Run("short text is a single chunk", func(t *testing.T) {
		chunks := Chunk("short", 100, 10)
		assert.Equal(t, []string{"short"}, chunks)
	})

	t.Run("windows overlap", func(t *testing.T) {
		chunks := Chunk("abcdefghij", 4, 2)
		assert.Equal(t, []string{"abcd", "cdef", "efgh", "ghij"}, chunks)
	})

	t.Run("covers whole text", func(t *testing.T) {
		text := "abcdefghijk"
		chunks := Chunk(text, 4, 1)
		last := chunks[len(chunks)-1]
		assert.Equal(t, text[len(text)-1:], last[len(last)-1:])
	})
}

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(42).Generate(20, 512, 50)
	b := NewGenerator(42).Generate(20, 512, 50)
	assert.Equal(t, a, b)

	c := NewGenerator(7).Generate(20, 512, 50)
	assert.NotEqual(t, a, c)
}

func TestGenerator_ProducesAllKinds(t *testing.T) {
	records := NewGenerator(42).Generate(30, 512, 50)

	kinds := map[string]int{}
	for _, r := range records {
		kinds[r.Kind]++
	}
	assert.Equal(t, 30, kinds[KindProduct])
	assert.Greater(t, kinds[KindFaq], 0)
	assert.Greater(t, kinds[KindManual], 0)

	// Every record survives the build contract.
	_, err := ToDocuments(records)
	assert.NoError(t, err)
}
