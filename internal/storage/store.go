// Package storage abstracts the media object store the treatment protocol
// writes synthesized narration audio and reversed clips into.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when an object key does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectStore is the minimal surface the media pipeline needs. Keys are
// slash-separated paths; PublicURL must resolve for any key that was
// successfully Put.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	PublicURL(key string) string
}
