package blob

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get and Delete when the key does not exist.
var ErrNotFound = errors.New("blob not found")

// BlobStore holds the graph artifact. Put must be atomic: readers observe
// either the previous content or the new content, never a partial write.
type BlobStore interface {
	// Put replaces the content stored under key.
	Put(ctx context.Context, key string, reader io.Reader) error

	// Get retrieves content stored under key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// List returns the keys starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes a blob.
	Delete(ctx context.Context, key string) error
}

// ReadAll fetches the whole blob stored under key.
func ReadAll(ctx context.Context, s BlobStore, key string) ([]byte, error) {
	rc, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
