package driven

import "context"

// LLMService provides text generation for composed prompts via a local
// model service.
//
// Implementations may include:
//   - Ollama (qwen3, llama3.2)
//   - Any local inference server with a generate endpoint
type LLMService interface {
	// Generate produces a text completion from a prompt.
	// Transport failures and timeouts are wrapped with
	// domain.ErrGenerationFailed; a response without a completion field
	// is wrapped with domain.ErrMalformedResponse.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
