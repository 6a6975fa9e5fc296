package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/snappy"
)

// compressedMagic prefixes snappy blocks so entries written before
// compression was enabled are still readable.
const compressedMagic = "\x00sz1"

// Compressed wraps a cache with snappy block compression. Layout results are
// repetitive JSON and typically shrink several times.
type Compressed struct {
	inner Cache
}

// NewCompressed returns a compressing wrapper around inner.
func NewCompressed(inner Cache) Cache {
	return &Compressed{inner: inner}
}

// Get decompresses the stored entry. Uncompressed entries are returned as is.
func (c *Compressed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.inner.Get(ctx, key)
	if err != nil || !ok {
		return data, ok, err
	}
	if len(data) < len(compressedMagic) || string(data[:len(compressedMagic)]) != compressedMagic {
		return data, true, nil
	}
	out, err := snappy.Decode(nil, data[len(compressedMagic):])
	if err != nil {
		return nil, false, fmt.Errorf("decompress %s: %w", key, err)
	}
	return out, true, nil
}

// Set compresses data before storing it.
func (c *Compressed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	buf := make([]byte, len(compressedMagic), len(compressedMagic)+snappy.MaxEncodedLen(len(data)))
	copy(buf, compressedMagic)
	buf = append(buf, snappy.Encode(nil, data)...)
	return c.inner.Set(ctx, key, buf, ttl)
}

// Delete removes key from the wrapped cache.
func (c *Compressed) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}

// Clear clears the wrapped cache.
func (c *Compressed) Clear(ctx context.Context) error {
	return c.inner.Clear(ctx)
}

// Close closes the wrapped cache.
func (c *Compressed) Close() error {
	return c.inner.Close()
}

var _ Cache = (*Compressed)(nil)
