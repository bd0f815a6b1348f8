package mmap

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/hupe1980/asmref/internal/conv"
)

// Mapping is a metadata image mapped read-only from disk.
type Mapping struct {
	image  []byte
	closed atomic.Bool
	unmap  func([]byte) error
}

// Open maps the image file at path. An empty file yields an empty mapping
// without touching the kernel.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	// The mapping outlives the descriptor.
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size() == 0 {
		return &Mapping{}, nil
	}
	size, err := conv.Int64ToInt(fi.Size())
	if err != nil {
		return nil, err
	}

	image, unmap, err := osMap(f, size)
	if err != nil {
		return nil, err
	}
	return &Mapping{image: image, unmap: unmap}, nil
}

// Close unmaps the image. Only the first call has an effect.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) || m.image == nil {
		return nil
	}
	return m.unmap(m.image)
}

// Bytes returns the image, or nil once unmapped. Metadata parsed from the
// slice must not be used after Close.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.image
}

// Size returns the image size in bytes.
func (m *Mapping) Size() int { return len(m.image) }

// Advise hints how the image will be read.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	return osAdvise(m.image, pattern)
}

// ReadAt copies image bytes at off, following io.ReaderAt.
func (m *Mapping) ReadAt(p []byte, off int64) (int, error) {
	switch {
	case m.closed.Load():
		return 0, ErrClosed
	case off < 0:
		return 0, ErrInvalidOffset
	case off >= int64(len(m.image)):
		return 0, io.EOF
	}
	n := copy(p, m.image[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
