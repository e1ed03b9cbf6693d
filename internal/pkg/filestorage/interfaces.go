// Package filestorage provides blob storage for uploaded files. Stored
// blobs are addressed by the public URL returned on save.
package filestorage

import (
	"context"
	"io"
)

// FileStorage defines the interface for blob storage operations.
type FileStorage interface {
	// Save stores the content under subPath, deriving the stored name from
	// filename's extension, and returns the publicly resolvable URL.
	Save(ctx context.Context, content io.Reader, filename, subPath string) (string, error)

	// Delete removes a previously stored blob by its URL. Deleting a blob
	// that no longer exists is not an error.
	Delete(ctx context.Context, fileURL string) error
}
