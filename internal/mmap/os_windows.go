//go:build windows

package mmap

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

func osMap(f *os.File, size int) ([]byte, func([]byte) error, error) {
	section, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READONLY, 0, 0, nil)
	if err != nil {
		return nil, nil, &os.PathError{Op: "CreateFileMapping", Path: f.Name(), Err: err}
	}
	// MapViewOfFile holds its own reference to the section.
	defer windows.CloseHandle(section)

	base, err := windows.MapViewOfFile(section, windows.FILE_MAP_READ, 0, 0, uintptr(size))
	if err != nil {
		return nil, nil, &os.PathError{Op: "MapViewOfFile", Path: f.Name(), Err: err}
	}

	image := unsafe.Slice((*byte)(unsafe.Pointer(base)), size)
	unmap := func([]byte) error { return windows.UnmapViewOfFile(base) }
	return image, unmap, nil
}

// Windows has no madvise; prefetching is left to the memory manager.
func osAdvise([]byte, AccessPattern) error { return nil }
