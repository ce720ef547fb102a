package repo

import (
	"context"
)

// Storage is the contract every snapshot backend has to fulfill: a plain
// key value blob store. The repository layers key naming and selection on
// top of it. Implementations must be safe for concurrent use.
type Storage interface {
	// Write stores data under the given key, overwriting an existing blob.
	Write(ctx context.Context, key string, data []byte) error

	// Read retrieves the blob for the given key.
	// Returns os.ErrNotExist if the key does not exist.
	Read(ctx context.Context, key string) ([]byte, error)

	// List returns all keys matching the given prefix. Callers must not
	// rely on the order, the repository re-sorts.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the blob for the given key.
	// Returns nil if the key does not exist (idempotent).
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the storage backend.
	Close() error
}
