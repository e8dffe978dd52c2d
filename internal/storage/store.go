package storage

import (
	"context"
	"io"
)

// Store defines the interface for a file storage backend. Paths are relative
// and use forward slashes.
type Store interface {
	Save(ctx context.Context, path string, reader io.Reader) (int64, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Exists(ctx context.Context, path string) (bool, error)
	Delete(ctx context.Context, path string) error
}
