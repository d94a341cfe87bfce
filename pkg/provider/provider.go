// Package provider defines the object storage surface used by bwing.
//
// The surface is deliberately narrow: list keys under a prefix, put an
// object, delete an object. Authentication uses SDK default credential
// chains - providers should not implement custom auth logic.
package provider

import (
	"context"
	"io"
)

// ObjectStore abstracts the three storage calls bwing makes.
//
// Implementations should:
//   - Use SDK default credential chains unless told otherwise
//   - Return a single page from ListObjects (no continuation)
//   - Wrap backend failures in *ProviderError
type ObjectStore interface {
	// ListObjects returns the keys under prefix from one list call.
	// An empty, non-nil slice means the backend reported no contents.
	ListObjects(ctx context.Context, prefix string) ([]string, error)

	// PutObject creates or overwrites the object at key.
	PutObject(ctx context.Context, key string, body io.Reader, opts PutOptions) error

	// DeleteObject removes the object at key.
	DeleteObject(ctx context.Context, key string) error
}

// PutOptions configures a PutObject call.
type PutOptions struct {
	// ContentLength is the body size in bytes. Negative means unknown.
	ContentLength int64

	// ContentType is the MIME type stored with the object.
	// Empty leaves the backend default.
	ContentType string
}

// ProviderType identifies a storage provider.
type ProviderType string

const (
	// ProviderS3 represents AWS S3 or S3-compatible storage.
	ProviderS3 ProviderType = "s3"

	// ProviderFile represents a local directory tree.
	ProviderFile ProviderType = "file"

	// ProviderMemory represents the in-process store used in tests.
	ProviderMemory ProviderType = "memory"
)

// String returns the string representation of the provider type.
func (p ProviderType) String() string {
	return string(p)
}
