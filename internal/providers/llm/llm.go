package llm

import "context"

type Provider interface {
	// GenerateText returns the full reply for a prompt.
	GenerateText(ctx context.Context, prompt string) (string, error)
	// StreamAnswer returns a stream of text chunks (incremental).
	StreamAnswer(ctx context.Context, prompt string) (chunks <-chan string, errs <-chan error)
	Close() error
}

// Embedder turns answer transcripts into vectors for the response archive.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}
