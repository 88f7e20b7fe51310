// Package cache provides TTL key/value stores for remote addon payloads.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store with per-entry TTL. Implementations never
// surface errors to the caller: a failed read is a miss and a failed write
// is dropped.
type Cache interface {
	// Get retrieves a value that is present and not expired.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores a value with the given TTL, overwriting any previous value.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
	// Delete removes a value.
	Delete(ctx context.Context, key string)
	// Purge removes all values.
	Purge(ctx context.Context)
}
