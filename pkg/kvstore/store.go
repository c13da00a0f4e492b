package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when nothing was saved under the namespace.
var ErrNotFound = errors.New("kvstore: namespace not found")

// Store persists opaque blobs keyed by namespace. Implementations must be
// safe for concurrent use.
type Store interface {
	Load(ctx context.Context, namespace string) ([]byte, error)
	Save(ctx context.Context, namespace string, value []byte) error
	Delete(ctx context.Context, namespace string) error
}
