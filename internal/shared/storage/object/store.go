package object

import (
	"context"
	"errors"
	"io"
)

// ErrExists is returned when a write would overwrite an existing object.
var ErrExists = errors.New("object already exists")

// BlobStore persists public media objects and resolves their public URLs.
type BlobStore interface {
	// Upload writes r at path without overwriting and returns the stored path.
	Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error)
	PublicURL(storedPath string) string
}
