package core

import "context"

type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

type LLMProvider interface {
	// Generate returns the model's text reply for the given prompts.
	// Implementations translate provider failures into the core error
	// taxonomy (ErrUpstreamRateLimited, ErrUpstreamTimeout, UpstreamError).
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)

	// ModelName reports the identifier stored alongside generated output.
	ModelName() string
}
