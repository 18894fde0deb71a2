package archive

import (
	"context"
	"io"
)

// StorageDriver defines how raw provider payloads are written and read back
type StorageDriver interface {
	// Save writes the content under key
	Save(ctx context.Context, key string, body io.Reader, contentType string) error

	// Get returns a ReadCloser to stream the payload back and its content type
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
}
