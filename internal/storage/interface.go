package storage

import (
	"context"
	"io"
	"time"
)

// StorageInterface defines the archive used for rental agreements.
// Supports both mock (local filesystem) and S3-compatible object storage.
type StorageInterface interface {
	// PutFile stores data under key, replacing any previous content.
	PutFile(ctx context.Context, key string, contentType string, data []byte) error

	// GeneratePresignedDownloadURL generates a time-limited URL for downloading
	// key: storage path/key for the file
	// expiresIn: how long the URL should be valid
	GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// FileExists checks if a file exists and returns its size
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)

	// DeleteFile removes a file from storage
	DeleteFile(ctx context.Context, key string) error
}

// FileReader is implemented by backends whose download URLs are served by this process.
type FileReader interface {
	ReadFile(key string) (io.ReadCloser, error)
	VerifyDownload(token, key string, expires int64) bool
}
