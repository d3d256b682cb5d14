package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// LocalUploader writes audio objects under a directory served as /static.
// Used when no GCS bucket is configured.
type LocalUploader struct {
	dir     string
	baseURL string
}

func NewLocalUploader(dir string) (*LocalUploader, error) {
	if dir == "" {
		dir = "static/audio"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalUploader{dir: dir, baseURL: "/static/audio"}, nil
}

func (u *LocalUploader) Dir() string { return u.dir }

func (u *LocalUploader) Upload(_ context.Context, objectName string, _ string, r io.Reader) (string, error) {
	name := filepath.Base(objectName) // no subdirectories on disk
	path := filepath.Join(u.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	return u.baseURL + "/" + name, nil
}
