package core

import "context"

// EmbeddingProvider turns text into fixed-length vectors via an external
// model. Implementations must reject empty input rather than return a
// zero vector.
type EmbeddingProvider interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMProvider generates a free-form completion for a prompt.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
