// Package cache stores layout results between runs.
//
// A [Cache] is a byte store with per-entry TTLs. Backends:
//   - [FileCache]: one file per key under a directory, for the CLI
//   - [RedisCache]: shared cache for server deployments
//   - [MongoCache]: document store with a TTL index
//   - [NullCache]: caching disabled
//
// [Compressed] wraps any backend with snappy compression. Keys come from a
// [Keyer] so the same document, direction and engine always map to the same
// entry, and [ScopedKeyer] prefixes keys with a namespace.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is a key/value store for serialized results.
type Cache interface {
	// Get returns the data stored under key. A missing or expired entry is
	// reported as a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry the cache owns.
	Clear(ctx context.Context) error

	// Close releases connections or handles.
	Close() error
}

// Default TTLs.
const (
	// TTLLayout bounds how long a layout is reused. Layouts are a pure
	// function of their key, so the TTL only limits cache growth.
	TTLLayout = 7 * 24 * time.Hour
)

// GetJSON reads key and decodes it into v. It returns [ErrCacheMiss] when the
// key is absent or holds data that no longer decodes.
func GetJSON(ctx context.Context, c Cache, key string, v any) error {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		return ErrCacheMiss
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	return c.Set(ctx, key, data, ttl)
}
