package models

import "context"

// EmbeddingService is a remote embedding call: one call per batch of texts.
// Implementations must return one vector per input text, position-aligned.
type EmbeddingService interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
