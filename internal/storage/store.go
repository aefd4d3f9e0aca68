// Package storage provides persistence for gold day rooms.
package storage

import "context"

// KV is the key-value store the app persists into. Keys are opaque
// strings; values are opaque byte blobs.
type KV interface {
	// Get returns the value stored under key, reporting absence via the
	// second return value rather than an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Close releases any resources held by the store.
	Close() error
}
