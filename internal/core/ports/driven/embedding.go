// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService generates vector embeddings from text via a local
// model service. Stateless and safe for concurrent use.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - Any OpenAI-compatible inference server
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// Transport failures, timeouts and non-success statuses are wrapped
	// with domain.ErrEmbeddingFailed; a response without an embedding
	// field is wrapped with domain.ErrMalformedResponse.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, preserving input
	// order. A nil vector at position i pairs with a non-nil error at the
	// same position in the returned slice; callers decide whether to retry
	// or skip that text.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, []error)

	// Dimensions returns the embedding vector size (e.g. 384, 768).
	// This is determined by the model and must match the index manifest.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
