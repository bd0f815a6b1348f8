package blobstore

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hupe1980/asmref/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore counts Open calls on the wrapped store.
type countingStore struct {
	BlobStore
	opens atomic.Int64
}

func (s *countingStore) Open(ctx context.Context, name string) (Blob, error) {
	s.opens.Add(1)
	return s.BlobStore.Open(ctx, name)
}

func TestCachingStore_Open(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	require.NoError(t, mem.Put(ctx, "Windows.winmd", []byte("image-v1")))

	inner := &countingStore{BlobStore: mem}
	lru := cache.NewLRU(1<<20, nil)
	store := NewCachingStore(inner, lru, "mem")

	for range 3 {
		b, err := store.Open(ctx, "Windows.winmd")
		require.NoError(t, err)
		data, err := ReadAll(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, "image-v1", string(data))
		require.NoError(t, b.Close())
	}
	assert.Equal(t, int64(1), inner.opens.Load())

	hits, misses := lru.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)

	// Put invalidates the cached copy.
	require.NoError(t, store.Put(ctx, "Windows.winmd", []byte("image-v2")))
	b, err := store.Open(ctx, "Windows.winmd")
	require.NoError(t, err)
	data, err := ReadAll(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, "image-v2", string(data))
	assert.Equal(t, int64(2), inner.opens.Load())
}

func TestCachingStore_LocalCopy(t *testing.T) {
	ctx := context.Background()
	local := NewLocalStore(t.TempDir())
	require.NoError(t, local.Put(ctx, "a.winmd", []byte("mapped")))

	store := NewCachingStore(local, cache.NewLRU(1<<20, nil), "local")
	b, err := store.Open(ctx, "a.winmd")
	require.NoError(t, err)

	// The inner mapping is closed already; the cached copy stays readable.
	data, err := ReadAll(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, "mapped", string(data))
}

func TestCachingStore_NotFound(t *testing.T) {
	store := NewCachingStore(NewMemoryStore(), cache.NewLRU(1<<10, nil), "mem")
	_, err := store.Open(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestCachingStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	require.NoError(t, mem.Put(ctx, "x", make([]byte, 4096)))
	store := NewCachingStore(mem, cache.NewLRU(1<<20, nil), "mem")

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := store.Open(ctx, "x")
			if assert.NoError(t, err) {
				assert.Equal(t, int64(4096), b.Size())
			}
		}()
	}
	wg.Wait()
}
