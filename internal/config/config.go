// Package config loads and validates askcatalog configuration.
//
// Configuration is applied in order of increasing precedence:
//  1. Hardcoded defaults
//  2. Project config (.askcatalog.yaml in the working directory)
//  3. Environment variables (ASKCATALOG_*)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete askcatalog configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Index      IndexConfig      `yaml:"index" json:"index"`
	Search     SearchConfig     `yaml:"search" json:"search"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Log        LogConfig        `yaml:"log" json:"log"`
}

// IndexConfig identifies which persisted index state to use or create.
type IndexConfig struct {
	// Collection is the logical collection name. Each collection owns its
	// own lexical index, vector graph, and metadata rows.
	Collection string `yaml:"collection" json:"collection"`

	// PersistDir is the root directory for on-disk index state.
	PersistDir string `yaml:"persist_dir" json:"persist_dir"`

	// CorpusPath is the JSON corpus file read by the index command.
	CorpusPath string `yaml:"corpus_path" json:"corpus_path"`

	// ChunkSize is the fixed chunk length (runes) for long manual texts.
	ChunkSize int `yaml:"chunk_size" json:"chunk_size"`

	// ChunkOverlap is the overlap (runes) between consecutive chunks.
	ChunkOverlap int `yaml:"chunk_overlap" json:"chunk_overlap"`
}

// SearchConfig configures hybrid retrieval parameters.
type SearchConfig struct {
	// Alpha is the semantic-weight fraction in [0,1]; 1-alpha weighs the
	// lexical (BM25) signal.
	Alpha float64 `yaml:"alpha" json:"alpha"`

	// TopK is the default number of results per query.
	TopK int `yaml:"top_k" json:"top_k"`

	// BM25K1 is the BM25 term frequency saturation parameter.
	BM25K1 float64 `yaml:"bm25_k1" json:"bm25_k1"`

	// BM25B is the BM25 document length normalization parameter.
	BM25B float64 `yaml:"bm25_b" json:"bm25_b"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider selects the backend: "static", "ollama", or "openai".
	Provider string `yaml:"provider" json:"provider"`

	// Model is the embedding model identifier for remote providers.
	Model string `yaml:"model" json:"model"`

	// Dimensions overrides the embedding dimension (0 = provider default).
	Dimensions int `yaml:"dimensions" json:"dimensions"`

	// BatchSize is the number of texts per provider request.
	BatchSize int `yaml:"batch_size" json:"batch_size"`

	// CacheSize is the LRU embedding cache capacity (0 disables caching).
	CacheSize int `yaml:"cache_size" json:"cache_size"`

	// OllamaHost is the Ollama API endpoint (default http://localhost:11434).
	OllamaHost string `yaml:"ollama_host" json:"ollama_host"`

	// OpenAIBaseURL overrides the OpenAI-compatible API base URL.
	OpenAIBaseURL string `yaml:"openai_base_url" json:"openai_base_url"`

	// OpenAIAPIKey is the API key; usually supplied via OPENAI_API_KEY.
	OpenAIAPIKey string `yaml:"-" json:"-"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Index: IndexConfig{
			Collection:   "catalog",
			PersistDir:   defaultPersistDir(),
			CorpusPath:   "data/representations.json",
			ChunkSize:    512,
			ChunkOverlap: 50,
		},
		Search: SearchConfig{
			Alpha:  0.7,
			TopK:   5,
			BM25K1: 1.5,
			BM25B:  0.75,
		},
		Embeddings: EmbeddingsConfig{
			Provider:  "static",
			Model:     "",
			BatchSize: 32,
			CacheSize: 1000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "",
		},
	}
}

// defaultPersistDir returns the default index state directory.
func defaultPersistDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".askcatalog")
	}
	return filepath.Join(home, ".askcatalog")
}

// Load loads configuration from the specified directory.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load configuration from .askcatalog.yaml or .yml.
func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{".askcatalog.yaml", ".askcatalog.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return c.loadYAML(path)
		}
	}
	// No config file is fine - use defaults.
	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Index.Collection != "" {
		c.Index.Collection = other.Index.Collection
	}
	if other.Index.PersistDir != "" {
		c.Index.PersistDir = other.Index.PersistDir
	}
	if other.Index.CorpusPath != "" {
		c.Index.CorpusPath = other.Index.CorpusPath
	}
	if other.Index.ChunkSize != 0 {
		c.Index.ChunkSize = other.Index.ChunkSize
	}
	if other.Index.ChunkOverlap != 0 {
		c.Index.ChunkOverlap = other.Index.ChunkOverlap
	}

	// Alpha zero is a legal value (pure lexical), but as a file default it
	// is indistinguishable from unset; require the env var for explicit 0.
	if other.Search.Alpha != 0 {
		c.Search.Alpha = other.Search.Alpha
	}
	if other.Search.TopK != 0 {
		c.Search.TopK = other.Search.TopK
	}
	if other.Search.BM25K1 != 0 {
		c.Search.BM25K1 = other.Search.BM25K1
	}
	if other.Search.BM25B != 0 {
		c.Search.BM25B = other.Search.BM25B
	}

	if other.Embeddings.Provider != "" {
		c.Embeddings.Provider = other.Embeddings.Provider
	}
	if other.Embeddings.Model != "" {
		c.Embeddings.Model = other.Embeddings.Model
	}
	if other.Embeddings.Dimensions != 0 {
		c.Embeddings.Dimensions = other.Embeddings.Dimensions
	}
	if other.Embeddings.BatchSize != 0 {
		c.Embeddings.BatchSize = other.Embeddings.BatchSize
	}
	if other.Embeddings.CacheSize != 0 {
		c.Embeddings.CacheSize = other.Embeddings.CacheSize
	}
	if other.Embeddings.OllamaHost != "" {
		c.Embeddings.OllamaHost = other.Embeddings.OllamaHost
	}
	if other.Embeddings.OpenAIBaseURL != "" {
		c.Embeddings.OpenAIBaseURL = other.Embeddings.OpenAIBaseURL
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}
}

// applyEnvOverrides applies ASKCATALOG_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ASKCATALOG_COLLECTION"); v != "" {
		c.Index.Collection = v
	}
	if v := os.Getenv("ASKCATALOG_PERSIST_DIR"); v != "" {
		c.Index.PersistDir = v
	}
	if v := os.Getenv("ASKCATALOG_CORPUS_PATH"); v != "" {
		c.Index.CorpusPath = v
	}
	if v := os.Getenv("ASKCATALOG_ALPHA"); v != "" {
		if a, err := strconv.ParseFloat(v, 64); err == nil && a >= 0 && a <= 1 {
			c.Search.Alpha = a
		}
	}
	if v := os.Getenv("ASKCATALOG_TOP_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			c.Search.TopK = k
		}
	}
	if v := os.Getenv("ASKCATALOG_BM25_K1"); v != "" {
		if k1, err := strconv.ParseFloat(v, 64); err == nil && k1 > 0 {
			c.Search.BM25K1 = k1
		}
	}
	if v := os.Getenv("ASKCATALOG_BM25_B"); v != "" {
		if b, err := strconv.ParseFloat(v, 64); err == nil && b >= 0 && b <= 1 {
			c.Search.BM25B = b
		}
	}
	if v := os.Getenv("ASKCATALOG_EMBEDDINGS_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("ASKCATALOG_EMBEDDINGS_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("ASKCATALOG_OLLAMA_HOST"); v != "" {
		c.Embeddings.OllamaHost = v
	}
	if v := os.Getenv("ASKCATALOG_OPENAI_BASE_URL"); v != "" {
		c.Embeddings.OpenAIBaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Embeddings.OpenAIAPIKey = v
	}
	if v := os.Getenv("ASKCATALOG_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Search.Alpha < 0 || c.Search.Alpha > 1 {
		return fmt.Errorf("search.alpha must be between 0 and 1, got %f", c.Search.Alpha)
	}
	if c.Search.TopK <= 0 {
		return fmt.Errorf("search.top_k must be positive, got %d", c.Search.TopK)
	}
	if c.Search.BM25K1 <= 0 {
		return fmt.Errorf("search.bm25_k1 must be positive, got %f", c.Search.BM25K1)
	}
	if c.Search.BM25B < 0 || c.Search.BM25B > 1 {
		return fmt.Errorf("search.bm25_b must be between 0 and 1, got %f", c.Search.BM25B)
	}
	if c.Index.Collection == "" {
		return fmt.Errorf("index.collection must not be empty")
	}
	if c.Index.ChunkSize < 0 || c.Index.ChunkOverlap < 0 {
		return fmt.Errorf("index.chunk_size and index.chunk_overlap must be non-negative")
	}
	if c.Index.ChunkOverlap >= c.Index.ChunkSize && c.Index.ChunkSize > 0 {
		return fmt.Errorf("index.chunk_overlap (%d) must be smaller than index.chunk_size (%d)",
			c.Index.ChunkOverlap, c.Index.ChunkSize)
	}

	validProviders := map[string]bool{"static": true, "ollama": true, "openai": true}
	if !validProviders[strings.ToLower(c.Embeddings.Provider)] {
		return fmt.Errorf("embeddings.provider must be 'static', 'ollama', or 'openai', got %s",
			c.Embeddings.Provider)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("log.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Log.Level)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
