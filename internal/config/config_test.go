package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "catalog", cfg.Index.Collection)
	assert.Equal(t, 0.7, cfg.Search.Alpha)
	assert.Equal(t, 5, cfg.Search.TopK)
	assert.Equal(t, 1.5, cfg.Search.BM25K1)
	assert.Equal(t, 0.75, cfg.Search.BM25B)
	assert.Equal(t, "static", cfg.Embeddings.Provider)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoConfigFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "catalog", cfg.Index.Collection)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
index:
  collection: shop
search:
  alpha: 0.4
  top_k: 10
embeddings:
  provider: ollama
  model: nomic-embed-text
`
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, ".askcatalog.yaml"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "shop", cfg.Index.Collection)
	assert.Equal(t, 0.4, cfg.Search.Alpha)
	assert.Equal(t, 10, cfg.Search.TopK)
	assert.Equal(t, "ollama", cfg.Embeddings.Provider)
	// Unset fields keep their defaults.
	assert.Equal(t, 1.5, cfg.Search.BM25K1)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, ".askcatalog.yaml"),
		[]byte("search:\n  alpha: 0.4\n"), 0o644))

	t.Setenv("ASKCATALOG_ALPHA", "0.9")
	t.Setenv("ASKCATALOG_COLLECTION", "env-collection")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 0.9, cfg.Search.Alpha)
	assert.Equal(t, "env-collection", cfg.Index.Collection)
	assert.Equal(t, "sk-test", cfg.Embeddings.OpenAIAPIKey)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"alpha above 1", func(c *Config) { c.Search.Alpha = 1.1 }},
		{"alpha below 0", func(c *Config) { c.Search.Alpha = -0.1 }},
		{"zero top_k", func(c *Config) { c.Search.TopK = 0 }},
		{"zero k1", func(c *Config) { c.Search.BM25K1 = 0 }},
		{"b above 1", func(c *Config) { c.Search.BM25B = 1.5 }},
		{"empty collection", func(c *Config) { c.Index.Collection = "" }},
		{"unknown provider", func(c *Config) { c.Embeddings.Provider = "magic" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"overlap >= chunk size", func(c *Config) {
			c.Index.ChunkSize = 100
			c.Index.ChunkOverlap = 100
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".askcatalog.yaml")

	cfg := NewConfig()
	cfg.Index.Collection = "written"
	cfg.Search.Alpha = 0.25
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "written", loaded.Index.Collection)
	assert.Equal(t, 0.25, loaded.Search.Alpha)
}
