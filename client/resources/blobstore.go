package resources

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a BlobStore that has no entry for a key.
var ErrNotFound = errors.New("blob not found")

// BlobStore persists downloaded resources between sessions.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Close() error
}
