package ecma

import (
	"bytes"
	"encoding/binary"
)

// String reads the NUL-terminated UTF-8 string at offset in #Strings.
// Offset 0 is the empty string.
func (m *Metadata) String(offset uint32) (string, error) {
	if offset == 0 {
		return "", nil
	}
	if int(offset) >= len(m.strings) {
		return "", formatErr("#Strings", int(offset), ErrBadHeapOffset)
	}
	tail := m.strings[offset:]
	end := bytes.IndexByte(tail, 0)
	if end < 0 {
		return "", formatErr("#Strings", int(offset), ErrTruncated)
	}
	return string(tail[:end]), nil
}

// Blob returns the blob at offset in #Blob. Offset 0 is the empty blob.
// The slice aliases the metadata bytes and must not be modified.
func (m *Metadata) Blob(offset uint32) ([]byte, error) {
	if offset == 0 {
		return nil, nil
	}
	if int(offset) >= len(m.blobs) {
		return nil, formatErr("#Blob", int(offset), ErrBadHeapOffset)
	}
	n, size, ok := blobLength(m.blobs[offset:])
	if !ok {
		return nil, formatErr("#Blob", int(offset), ErrTruncated)
	}
	start := int(offset) + size
	if start+n > len(m.blobs) {
		return nil, formatErr("#Blob", int(offset), ErrTruncated)
	}
	return m.blobs[start : start+n : start+n], nil
}

// GUID returns the 1-based entry of #GUID.
func (m *Metadata) GUID(index uint32) ([16]byte, error) {
	var g [16]byte
	if index == 0 {
		return g, nil
	}
	off := int(index-1) * 16
	if off+16 > len(m.guids) {
		return g, formatErr("#GUID", off, ErrBadHeapOffset)
	}
	copy(g[:], m.guids[off:])
	return g, nil
}

// blobLength decodes the compressed length prefix of a blob (ECMA-335 II.24.2.4).
// It returns the blob length and the size of the prefix.
func blobLength(b []byte) (n, size int, ok bool) {
	if len(b) == 0 {
		return 0, 0, false
	}
	switch {
	case b[0]&0x80 == 0:
		return int(b[0]), 1, true
	case b[0]&0xC0 == 0x80:
		if len(b) < 2 {
			return 0, 0, false
		}
		return int(binary.BigEndian.Uint16(b) & 0x3FFF), 2, true
	case b[0]&0xE0 == 0xC0:
		if len(b) < 4 {
			return 0, 0, false
		}
		return int(binary.BigEndian.Uint32(b) & 0x1FFFFFFF), 4, true
	default:
		return 0, 0, false
	}
}

func (m *Metadata) validString(offset uint32) bool {
	return offset == 0 || int(offset) < len(m.strings)
}

func (m *Metadata) validBlob(offset uint32) bool {
	return offset == 0 || int(offset) < len(m.blobs)
}
