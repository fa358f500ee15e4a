package driven

import "context"

// GenerationService is the narrow contract to the external generation
// collaborator. This core shapes prompts and retrieval context; it
// does not own answer text.
//
// This is an optional service - when nil or unreachable, features
// that need it (answer generation, LLM reranking) degrade gracefully.
type GenerationService interface {
	// Generate produces a text completion for the prompt. Context, if
	// non-empty, is the source-attributed retrieval block.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight
	// request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// Context is retrieval context prepended to the prompt.
	Context string

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}
