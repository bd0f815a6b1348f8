package mmap

import "errors"

// AccessPattern tells the kernel how an image will be read.
type AccessPattern int

const (
	// AccessDefault leaves read-ahead to the kernel.
	AccessDefault AccessPattern = iota
	// AccessSequential suits whole-image passes such as fingerprinting or
	// decompression.
	AccessSequential
	// AccessRandom suits table and heap lookups, which jump across the
	// metadata root.
	AccessRandom
)

var (
	// ErrClosed is returned by reads from an unmapped image.
	ErrClosed = errors.New("mmap: image is unmapped")
	// ErrInvalidOffset is returned for negative offsets.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)
