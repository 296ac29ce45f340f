package assets

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotFound is returned when no blob exists for a key
	ErrNotFound = errors.New("asset not found")

	// ErrValidation is returned for empty keys or bodies
	ErrValidation = errors.New("invalid asset")
)

// Storage holds image blobs referenced by asset fields
type Storage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
