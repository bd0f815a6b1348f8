// Package mmap maps metadata images read-only into memory.
//
// # Usage
//
//	m, err := mmap.Open("Windows.Foundation.winmd")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2), with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile (Advise is a no-op)
//
// A Mapping is safe for concurrent reads. Close is idempotent, but callers
// must not touch a slice returned by Bytes after Close returns.
package mmap
