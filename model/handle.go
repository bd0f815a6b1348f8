package model

import "fmt"

// MaxRowID is the largest row index an AssemblyReferenceHandle can carry.
const MaxRowID = 0x00FFFFFF

// MaxHeapOffset is the largest heap offset a StringHandle or BlobHandle can carry.
const MaxHeapOffset = 0x1FFFFFFF

const (
	// virtualBit marks a handle that addresses a synthesized (projected) entry.
	virtualBit uint32 = 0x80000000

	rowIDMask      uint32 = MaxRowID
	heapOffsetMask uint32 = MaxHeapOffset
)

// AssemblyReferenceHandle identifies an assembly reference within a reader
// session. It packs a row index and an "is virtual" flag.
//
// Handles are opaque. They are produced by the reader and are only
// meaningful for the session that produced them. The zero value is the nil
// handle.
type AssemblyReferenceHandle struct {
	v uint32
}

// AssemblyReferenceFromRow returns the handle of a physical AssemblyRef row.
// It panics if row is zero or does not fit the row index field.
func AssemblyReferenceFromRow(row uint32) AssemblyReferenceHandle {
	if row == 0 || row > rowIDMask {
		panic(invariantf("model.AssemblyReferenceFromRow", "row %d out of range", row))
	}
	return AssemblyReferenceHandle{v: row}
}

// AssemblyReferenceFromVirtualIndex returns the handle of a virtual
// assembly reference slot. It panics if index is zero or does not fit the
// row index field.
func AssemblyReferenceFromVirtualIndex(index uint32) AssemblyReferenceHandle {
	if index == 0 || index > rowIDMask {
		panic(invariantf("model.AssemblyReferenceFromVirtualIndex", "virtual index %d out of range", index))
	}
	return AssemblyReferenceHandle{v: virtualBit | index}
}

// Row returns the row index (physical) or virtual slot (virtual).
func (h AssemblyReferenceHandle) Row() uint32 { return h.v & rowIDMask }

// IsVirtual reports whether h addresses a synthesized reference.
func (h AssemblyReferenceHandle) IsVirtual() bool { return h.v&virtualBit != 0 }

// IsNil reports whether h is the zero handle.
func (h AssemblyReferenceHandle) IsNil() bool { return h.v == 0 }

// Valid reports whether only the row index and virtual bits are populated
// and the row index is non-zero.
func (h AssemblyReferenceHandle) Valid() bool {
	return h.v&^(virtualBit|rowIDMask) == 0 && h.Row() != 0
}

// Value returns the raw 32-bit encoding of h.
func (h AssemblyReferenceHandle) Value() uint32 { return h.v }

func (h AssemblyReferenceHandle) String() string {
	if h.IsVirtual() {
		return fmt.Sprintf("AssemblyRef(virtual:%d)", h.Row())
	}
	return fmt.Sprintf("AssemblyRef(%d)", h.Row())
}

// StringHandle references a string in the #Strings heap or, when virtual, a
// fixed string constant. The zero value is the nil (empty) string.
type StringHandle struct {
	v uint32
}

// StringFromOffset returns a handle to the #Strings heap entry at offset.
func StringFromOffset(offset uint32) StringHandle {
	if offset > heapOffsetMask {
		panic(invariantf("model.StringFromOffset", "offset %#x out of range", offset))
	}
	return StringHandle{v: offset}
}

// StringFromVirtualIndex returns a handle to a fixed string constant.
func StringFromVirtualIndex(index uint32) StringHandle {
	if index == 0 || index > heapOffsetMask {
		panic(invariantf("model.StringFromVirtualIndex", "virtual index %d out of range", index))
	}
	return StringHandle{v: virtualBit | index}
}

// IsVirtual reports whether h addresses a fixed string constant.
func (h StringHandle) IsVirtual() bool { return h.v&virtualBit != 0 }

// IsNil reports whether h is the empty string.
func (h StringHandle) IsNil() bool { return h.v == 0 }

// Offset returns the heap offset (physical) or the constant index (virtual).
func (h StringHandle) Offset() uint32 { return h.v & heapOffsetMask }

// Value returns the raw 32-bit encoding of h.
func (h StringHandle) Value() uint32 { return h.v }

// BlobHandle references a blob in the #Blob heap or, when virtual, a fixed
// blob constant. The zero value is the nil (absent) blob.
type BlobHandle struct {
	v uint32
}

// BlobFromOffset returns a handle to the #Blob heap entry at offset.
func BlobFromOffset(offset uint32) BlobHandle {
	if offset > heapOffsetMask {
		panic(invariantf("model.BlobFromOffset", "offset %#x out of range", offset))
	}
	return BlobHandle{v: offset}
}

// BlobFromVirtualIndex returns a handle to a fixed blob constant.
func BlobFromVirtualIndex(index uint32) BlobHandle {
	if index == 0 || index > heapOffsetMask {
		panic(invariantf("model.BlobFromVirtualIndex", "virtual index %d out of range", index))
	}
	return BlobHandle{v: virtualBit | index}
}

// IsVirtual reports whether h addresses a fixed blob constant.
func (h BlobHandle) IsVirtual() bool { return h.v&virtualBit != 0 }

// IsNil reports whether h is the absent blob.
func (h BlobHandle) IsNil() bool { return h.v == 0 }

// Offset returns the heap offset (physical) or the constant index (virtual).
func (h BlobHandle) Offset() uint32 { return h.v & heapOffsetMask }

// Value returns the raw 32-bit encoding of h.
func (h BlobHandle) Value() uint32 { return h.v }
