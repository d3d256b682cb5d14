package tts

import "context"

type Provider interface {
	// Synthesize converts text to a playable audio blob and its content type.
	Synthesize(ctx context.Context, text string) (audio []byte, contentType string, err error)
	Close() error
}
