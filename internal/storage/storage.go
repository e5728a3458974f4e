package storage

import (
	"context"
	"time"
)

// DefaultPresignedURLExpiry bounds how long a presigned URL stays usable.
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage abstracts the object store holding user-uploaded files
// (currently profile avatars). Uploads and downloads go through presigned
// URLs so image bytes never pass through the API server.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL allowing a direct
	// PUT of the object. The client must send the same Content-Type.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL allowing a direct
	// GET of the object.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the store.
	DeleteObject(ctx context.Context, objectKey string) error
}
