package blobstore

import (
	"bytes"
	"context"

	"github.com/hupe1980/asmref/cache"
	"golang.org/x/sync/singleflight"
)

// CachingStore wraps a BlobStore and keeps whole images in a cache.
// Concurrent opens of the same uncached name share one download.
type CachingStore struct {
	inner BlobStore
	cache cache.BlobCache
	id    string
	group singleflight.Group
}

var _ BlobStore = (*CachingStore)(nil)

// NewCachingStore creates a new CachingStore. id separates the key space
// of this store from other stores sharing the same cache.
func NewCachingStore(inner BlobStore, c cache.BlobCache, id string) *CachingStore {
	return &CachingStore{
		inner: inner,
		cache: c,
		id:    id,
	}
}

func (s *CachingStore) key(name string) cache.Key {
	return cache.Key{Store: s.id, Name: name}
}

// Open returns a cached copy of the blob, loading it on a miss.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	key := s.key(name)
	if data, ok := s.cache.Get(ctx, key); ok {
		return NewMemoryBlob(data), nil
	}

	v, err, _ := s.group.Do(name, func() (any, error) {
		b, err := s.inner.Open(ctx, name)
		if err != nil {
			return nil, err
		}
		defer b.Close()

		data, err := ReadAll(ctx, b)
		if err != nil {
			return nil, err
		}
		// Mapped bytes die with the blob; keep a private copy.
		if _, ok := b.(Mappable); ok {
			data = bytes.Clone(data)
		}
		s.cache.Set(ctx, key, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return NewMemoryBlob(v.([]byte)), nil
}

// Put invalidates the cached copy and writes through.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	key := s.key(name)
	s.cache.Invalidate(func(k cache.Key) bool { return k == key })
	return s.inner.Put(ctx, name, data)
}

// List passes through to the inner store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}
