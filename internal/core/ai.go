package core

import "context"

// EmbeddingProvider turns a batch of texts into vectors, one per text, in order.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMProvider generates a completion from a system and user prompt.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// Image is raw image data plus the format hint vision models need ("png", "jpeg").
type Image struct {
	Format string
	Data   []byte
}

// VisionProvider describes a batch of images in one call. The prompt is expected
// to demand one numbered description per image, in input order.
type VisionProvider interface {
	Describe(ctx context.Context, prompt string, images []Image) (string, error)
}
