// Package file provides TOML-backed configuration loading.
// Configuration lives at ~/.recall/config.toml by default; a missing file
// yields the built-in defaults rather than an error.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/recall-cli/internal/adapters/driven/embedding/ollama"
	llmollama "github.com/custodia-labs/recall-cli/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/recall-cli/internal/connectors/filesystem"
	"github.com/custodia-labs/recall-cli/internal/core/services"
	"github.com/custodia-labs/recall-cli/internal/postprocessors/chunker"
)

// Config is the full application configuration.
type Config struct {
	Source     SourceConfig      `toml:"source"`
	Chunking   ChunkingConfig    `toml:"chunking"`
	Embedding  EmbeddingConfig   `toml:"embedding"`
	Generation GenerationConfig  `toml:"generation"`
	Index      IndexConfig       `toml:"index"`
	Query      QueryConfig       `toml:"query"`
	Build      BuildConfig       `toml:"build"`
	Processors []ProcessorConfig `toml:"processors"`
}

// SourceConfig configures the filesystem crawl.
type SourceConfig struct {
	// Root is the directory tree to index.
	Root string `toml:"root"`

	// Exclusions are substrings; a directory whose path contains one is
	// skipped with its whole subtree.
	Exclusions []string `toml:"exclusions"`

	// Extensions is the file extension allow-list.
	Extensions []string `toml:"extensions"`
}

// ChunkingConfig configures document splitting.
type ChunkingConfig struct {
	Size    int `toml:"size"`
	Overlap int `toml:"overlap"`
}

// EmbeddingConfig configures the embedding service.
type EmbeddingConfig struct {
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	Dimensions     int     `toml:"dimensions"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	MaxRetries     int     `toml:"max_retries"`
	RateLimit      float64 `toml:"rate_limit"`
}

// Timeout returns the request timeout as a duration.
func (c EmbeddingConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GenerationConfig configures the generation service.
type GenerationConfig struct {
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	MaxTokens      int     `toml:"max_tokens"`
	Temperature    float64 `toml:"temperature"`
}

// Timeout returns the request timeout as a duration.
func (c GenerationConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// IndexConfig configures the on-disk index store.
type IndexConfig struct {
	// Location is the index directory. Empty means ~/.recall/index.
	Location string `toml:"location"`
}

// QueryConfig configures retrieval.
type QueryConfig struct {
	TopK int `toml:"top_k"`
}

// BuildConfig configures build concurrency.
type BuildConfig struct {
	Workers int `toml:"workers"`
}

// ProcessorConfig names a registered post-processor to run after the
// chunker, with its processor-specific settings.
type ProcessorConfig struct {
	Name   string         `toml:"name"`
	Config map[string]any `toml:"config"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Source: SourceConfig{
			Root:       ".",
			Extensions: filesystem.DefaultExtensions(),
		},
		Chunking: ChunkingConfig{
			Size:    chunker.DefaultChunkSize,
			Overlap: chunker.DefaultChunkOverlap,
		},
		Embedding: EmbeddingConfig{
			BaseURL:        ollama.DefaultBaseURL,
			Model:          ollama.DefaultModel,
			Dimensions:     ollama.DefaultDimensions,
			TimeoutSeconds: int(ollama.DefaultTimeout / time.Second),
			MaxRetries:     ollama.DefaultMaxRetries,
			RateLimit:      ollama.DefaultRateLimit,
		},
		Generation: GenerationConfig{
			BaseURL:        llmollama.DefaultBaseURL,
			Model:          llmollama.DefaultLLMModel,
			TimeoutSeconds: int(llmollama.DefaultLLMTimeout / time.Second),
		},
		Query: QueryConfig{
			TopK: services.DefaultTopK,
		},
		Build: BuildConfig{
			Workers: services.DefaultEmbedWorkers,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".recall", "config.toml"), nil
}

// Load reads configuration from path. An empty path means the default
// location; a missing file returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the configuration to path, creating parent directories.
// An empty path means the default location.
func Save(path string, cfg Config) (string, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshalling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}

	return path, nil
}
