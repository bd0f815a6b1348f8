//go:build unix

package mmap

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// Images are never written through the mapping, so a private read-only
// view is enough.
func osMap(f *os.File, size int) ([]byte, func([]byte) error, error) {
	image, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, &os.PathError{Op: "mmap", Path: f.Name(), Err: err}
	}
	return image, unix.Munmap, nil
}

var advice = map[AccessPattern]int{
	AccessDefault:    unix.MADV_NORMAL,
	AccessSequential: unix.MADV_SEQUENTIAL,
	AccessRandom:     unix.MADV_RANDOM,
}

func osAdvise(image []byte, pattern AccessPattern) error {
	if len(image) == 0 {
		return nil
	}
	a, ok := advice[pattern]
	if !ok {
		a = unix.MADV_NORMAL
	}
	if err := unix.Madvise(image, a); err != nil && !errors.Is(err, unix.EINVAL) {
		return err
	}
	return nil
}
