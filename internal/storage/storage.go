// Package storage holds generated image assets in an S3-compatible bucket
// and serves them through a public URL prefix.
package storage

import (
	"context"
	"io"
)

// ObjectStorage defines the interface for object storage operations
type ObjectStorage interface {
	// EnsureBucket creates the bucket if it doesn't exist
	EnsureBucket(ctx context.Context) error

	// Upload uploads an object to storage
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// GetURL returns the URL for accessing an object
	GetURL(key string) string
}
