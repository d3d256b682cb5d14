package storage

import (
	"context"
	"io"
)

// Uploader stores an audio object and returns the URL a browser can play it
// from.
type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedURL string, err error)
}
