// Package storage defines the interfaces for the blob storage provider.
// The abstraction keeps the pipeline independent of a specific backend
// (S3/MinIO in production, in-memory in tests).
package storage

import "context"

// Class is a storage class hint attached to uploads.
type Class string

// Storage classes understood by S3-compatible stores.
const (
	ClassStandard         Class = "STANDARD"
	ClassInfrequentAccess Class = "STANDARD_IA"
)

// ObjectStore is the durable store the mirror and publisher write to.
type ObjectStore interface {
	// Exists probes object metadata without fetching the body.
	Exists(ctx context.Context, key string) (bool, error)
	// Put uploads data under key with the given content type and class.
	Put(ctx context.Context, key string, data []byte, contentType string, class Class) error
	// SetPublicRead makes the object anonymously retrievable. Callers
	// treat a failure here as reportable but non-fatal: the object is
	// already durably stored.
	SetPublicRead(ctx context.Context, key string) error
	// PublicURL returns the deterministic public URL for key. It is
	// templated, never a network call.
	PublicURL(key string) string
}
