package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/asmref/internal/conv"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction over a location holding metadata images.
//
// Implementations must be safe for concurrent use.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Put writes a blob atomically.
	Put(ctx context.Context, name string, data []byte) error
	// List returns the names of all blobs with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	// ReadAt reads len(p) bytes at off. It follows io.ReaderAt semantics.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
}

// Mappable is an optional interface for Blobs that are already in memory.
type Mappable interface {
	// Bytes returns the underlying byte slice without copying.
	// The slice is valid until the Blob is closed.
	Bytes() ([]byte, error)
}

// Fetcher is an optional interface for Blobs that can download their whole
// content more efficiently than a single ReadAt.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// ReadAll returns the content of b. Mappable blobs are returned without
// copying; the result then shares b's lifetime.
func ReadAll(ctx context.Context, b Blob) ([]byte, error) {
	if m, ok := b.(Mappable); ok {
		return m.Bytes()
	}
	if f, ok := b.(Fetcher); ok {
		return f.Fetch(ctx)
	}

	size, err := conv.Int64ToInt(b.Size())
	if err != nil {
		return nil, fmt.Errorf("blobstore: invalid blob size: %w", err)
	}
	buf := make([]byte, size)
	n, err := b.ReadAt(ctx, buf, 0)
	if err != nil && !(errors.Is(err, io.EOF) && n == size) {
		return nil, err
	}
	if n != size {
		return nil, io.ErrUnexpectedEOF
	}
	return buf, nil
}
