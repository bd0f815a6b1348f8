package cache

import "context"

// Key identifies a cached image: the store it came from and its name there.
type Key struct {
	Store string
	Name  string
}

// BlobCache is a byte-oriented cache for immutable images.
// Returned slices must be treated as read-only.
type BlobCache interface {
	// Get returns a cached image. ok=false if missing.
	Get(ctx context.Context, key Key) (b []byte, ok bool)
	// Set caches an image. The caller must treat b as immutable afterwards.
	Set(ctx context.Context, key Key, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key Key) bool)
	// Stats returns cache statistics.
	Stats() (hits, misses int64)
}
