// Package store provides read access to the object stores that hold
// pre-trained model checkpoints: a local directory, an HTTP server or an
// S3 (or S3-compatible) bucket.
package store

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned (wrapped) when an object does not exist in a store.
var ErrNotFound = errors.New("store: object not found")

// Store defines the read operations the model hub needs from a backend.
type Store interface {
	// Open returns a reader for the object at key.
	// The caller is responsible for closing the returned ReadCloser.
	// A missing object yields an error wrapping ErrNotFound.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists checks whether an object exists at key.
	Exists(ctx context.Context, key string) (bool, error)

	// Location returns a human-readable location of key, for diagnostics.
	Location(key string) string
}
