package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ollamaStub serves /api/embed with fixed 3-dimensional vectors and
// counts requests.
func ollamaStub(t *testing.T, fail bool) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if fail {
			http.Error(w, "model not loaded", http.StatusInternalServerError)
			return
		}

		var req ollamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := ollamaEmbedResponse{Embeddings: make([][]float32, len(req.Input))}
		for i := range req.Input {
			resp.Embeddings[i] = []float32{0.1, 0.2, 0.3}
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)

	return srv, &calls
}

func TestOllamaEmbedder_EmbedBatch(t *testing.T) {
	srv, _ := ollamaStub(t, false)
	e := NewOllamaEmbedder(OllamaConfig{Host: srv.URL, Model: "test-model"})
	defer func() { _ = e.Close() }()

	vecs, err := e.EmbedBatch(context.Background(), []string{"laptop", "tablet"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	require.Len(t, vecs[0], 3)

	// Dimension auto-detected from the first response.
	assert.Equal(t, 3, e.Dimensions())
}

func TestOllamaEmbedder_SplitsIntoBatches(t *testing.T) {
	srv, calls := ollamaStub(t, false)
	e := NewOllamaEmbedder(OllamaConfig{Host: srv.URL, Model: "test-model", BatchSize: 1})
	defer func() { _ = e.Close() }()

	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOllamaEmbedder_FailureIsNotRetried(t *testing.T) {
	srv, calls := ollamaStub(t, true)
	e := NewOllamaEmbedder(OllamaConfig{Host: srv.URL, Model: "test-model"})
	defer func() { _ = e.Close() }()

	_, err := e.EmbedBatch(context.Background(), []string{"laptop"})
	require.Error(t, err)

	// A failed call aborts immediately: exactly one request hits the
	// server, never a backoff loop.
	assert.Equal(t, int32(1), calls.Load())
}
