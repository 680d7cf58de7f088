// Package cache stores rendered artifacts and fetched calendar feeds.
//
// A [Cache] is a byte store with per-entry TTLs. Three backends exist:
// [FileCache] for the CLI (~/.cache/timegrid), [RedisCache] for a shared
// deployment of the HTTP API, and [NullCache] when caching is disabled.
//
// Keys are built by a [Keyer] so that every component hashes its inputs
// the same way. A cache failure is never fatal to an export; callers log it
// and recompute.
package cache

import (
	"context"
	"time"
)

// Default TTLs.
const (
	// TTLFeed bounds how stale a fetched ICS feed may be.
	TTLFeed = 15 * time.Minute

	// TTLArtifact applies to rendered output. Artifacts are keyed by a hash
	// of their inputs, so they never go stale; the TTL only bounds disk use.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with expiring entries. Implementations are safe for
// concurrent use.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by backends that can drop all of timegrid's
// entries at once. [NullCache] holds nothing and does not implement it.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}
