package core

import (
	"context"
	"errors"
	"io"
)

// ErrFileNotFound is returned by FileStore.Open when no file exists under a key.
var ErrFileNotFound = errors.New("file not found")

// FileStore is any service that can persist and serve uploaded files.
// Keys are slash-separated relative paths generated by the application;
// user-supplied names never become keys.
type FileStore interface {
	// Save persists the contents of r under key, replacing any existing file.
	// It reports the number of bytes written.
	Save(ctx context.Context, key string, r io.Reader) (int64, error)

	// Open returns the stored contents for key. The caller closes the reader.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	Remove(ctx context.Context, key string) error
}
