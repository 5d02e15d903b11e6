// Package storage persists dayplan collections as opaque keyed blobs.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// UpdateFunc receives the current blob (nil when absent) and returns the
// replacement.
type UpdateFunc func(current []byte) ([]byte, error)

// Store is a key/value blob store. Get returns ErrNotFound for absent keys.
// Update is an atomic read-modify-write of a single key, also against other
// processes sharing the same backing file or database.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Update(ctx context.Context, key string, fn UpdateFunc) error
}
