// Package objectstore provides minimal cloud storage access for remote
// warehouses and test fixtures: put, list, and prefix cleanup. Backends
// exist for S3 and GCS.
package objectstore

import "context"

// Store is a minimal object storage client scoped to one bucket.
type Store interface {
	// Put uploads data under the given key.
	Put(ctx context.Context, key string, data []byte) error

	// List returns the keys under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// RemovePrefix deletes every object under the given prefix.
	RemovePrefix(ctx context.Context, prefix string) error

	// Probe verifies the bucket is reachable with the ambient credentials.
	Probe(ctx context.Context) error

	// Close releases the underlying client.
	Close() error
}
