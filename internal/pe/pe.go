package pe

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	clrDirectory  = 14 // IMAGE_DIRECTORY_ENTRY_COM_DESCRIPTOR
	cliHeaderSize = 72
)

var (
	// ErrNotManaged is returned for images without a CLI header.
	ErrNotManaged = errors.New("pe: image has no CLI header")
	// ErrBadRVA is returned when an RVA does not fall inside any section.
	ErrBadRVA = errors.New("pe: rva outside of sections")
)

// IsImage reports whether data starts with an MZ header.
func IsImage(data []byte) bool {
	return len(data) >= 2 && data[0] == 'M' && data[1] == 'Z'
}

// Locate returns the metadata root of the managed image in data. The
// returned slice aliases data.
func Locate(data []byte) ([]byte, error) {
	f, err := pe.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("pe: %w", err)
	}
	defer f.Close()

	var dirs []pe.DataDirectory
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		dirs = oh.DataDirectory[:min(oh.NumberOfRvaAndSizes, 16)]
	case *pe.OptionalHeader64:
		dirs = oh.DataDirectory[:min(oh.NumberOfRvaAndSizes, 16)]
	}
	if len(dirs) <= clrDirectory || dirs[clrDirectory].VirtualAddress == 0 {
		return nil, ErrNotManaged
	}

	cli, err := slice(f, data, dirs[clrDirectory].VirtualAddress, cliHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("pe: cli header: %w", err)
	}
	rva := binary.LittleEndian.Uint32(cli[8:])
	size := binary.LittleEndian.Uint32(cli[12:])
	md, err := slice(f, data, rva, size)
	if err != nil {
		return nil, fmt.Errorf("pe: metadata: %w", err)
	}
	return md, nil
}

func slice(f *pe.File, data []byte, rva, size uint32) ([]byte, error) {
	for _, s := range f.Sections {
		if rva < s.VirtualAddress || rva >= s.VirtualAddress+max(s.VirtualSize, s.Size) {
			continue
		}
		off := uint64(s.Offset) + uint64(rva-s.VirtualAddress)
		end := off + uint64(size)
		if end > uint64(s.Offset)+uint64(s.Size) || end > uint64(len(data)) {
			return nil, ErrBadRVA
		}
		return data[off:end:end], nil
	}
	return nil, ErrBadRVA
}
