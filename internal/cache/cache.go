// Package cache stores acquired subtitle tracks so repeated requests for the
// same title skip the providers. Backends are registered by name: an
// in-process LRU ("memory") and Redis/Valkey ("redis").
package cache

import "context"

// EvictCallback is called when an entry is pushed out by the size bound.
// The redis backend reports a nil value.
type EvictCallback func(key string, value []byte)

// Store is a size-bounded key-value store whose entries expire after a TTL.
// Backend failures are logged and behave like a miss; the cache is never
// allowed to fail an acquisition.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	// Len returns the number of live entries.
	Len(ctx context.Context) int
	Close() error
}
