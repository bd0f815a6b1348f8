package model

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemblyReferenceHandle(t *testing.T) {
	t.Run("Physical", func(t *testing.T) {
		h := AssemblyReferenceFromRow(42)
		assert.Equal(t, uint32(42), h.Row())
		assert.False(t, h.IsVirtual())
		assert.True(t, h.Valid())
		assert.Equal(t, uint32(42), h.Value())
		assert.Equal(t, "AssemblyRef(42)", h.String())
	})

	t.Run("Virtual", func(t *testing.T) {
		h := AssemblyReferenceFromVirtualIndex(6)
		assert.Equal(t, uint32(6), h.Row())
		assert.True(t, h.IsVirtual())
		assert.True(t, h.Valid())
		assert.Equal(t, uint32(0x80000006), h.Value())
		assert.Equal(t, "AssemblyRef(virtual:6)", h.String())
	})

	t.Run("MaxRow", func(t *testing.T) {
		h := AssemblyReferenceFromRow(MaxRowID)
		assert.Equal(t, uint32(MaxRowID), h.Row())
		assert.False(t, h.IsVirtual())
	})

	t.Run("Nil", func(t *testing.T) {
		var h AssemblyReferenceHandle
		assert.True(t, h.IsNil())
		assert.False(t, h.Valid())
	})

	t.Run("ZeroRowPanics", func(t *testing.T) {
		assert.PanicsWithError(t, "asmref: invariant violation in model.AssemblyReferenceFromRow: row 0 out of range", func() {
			AssemblyReferenceFromRow(0)
		})
		require.Panics(t, func() { AssemblyReferenceFromVirtualIndex(0) })
	})

	t.Run("OversizedRowPanics", func(t *testing.T) {
		require.Panics(t, func() { AssemblyReferenceFromRow(MaxRowID + 1) })
		require.Panics(t, func() { AssemblyReferenceFromVirtualIndex(1 << 24) })
	})

	t.Run("StrayBitsInvalid", func(t *testing.T) {
		h := AssemblyReferenceHandle{v: 0x01000001}
		assert.False(t, h.Valid())
	})
}

func TestHeapHandles(t *testing.T) {
	s := StringFromOffset(0x10)
	assert.False(t, s.IsVirtual())
	assert.Equal(t, uint32(0x10), s.Offset())

	vs := StringFromVirtualIndex(3)
	assert.True(t, vs.IsVirtual())
	assert.Equal(t, uint32(3), vs.Offset())
	assert.NotEqual(t, s, vs)

	assert.True(t, StringHandle{}.IsNil())
	assert.True(t, StringFromOffset(0).IsNil())

	b := BlobFromOffset(7)
	vb := BlobFromVirtualIndex(7)
	assert.Equal(t, b.Offset(), vb.Offset())
	assert.NotEqual(t, b, vb)
	assert.True(t, BlobHandle{}.IsNil())

	require.Panics(t, func() { BlobFromOffset(MaxHeapOffset + 1) })
	require.Panics(t, func() { StringFromVirtualIndex(0) })
}

func TestAssemblyFlags(t *testing.T) {
	assert.True(t, AssemblyFlagsPublicKey.HasPublicKey())
	assert.False(t, AssemblyFlagsRetargetable.HasPublicKey())
	assert.Equal(t, "None", AssemblyFlags(0).String())
	assert.Equal(t, "PublicKey|Retargetable", (AssemblyFlagsPublicKey | AssemblyFlagsRetargetable).String())
	assert.Equal(t, "PublicKey|0x10", (AssemblyFlagsPublicKey | 0x10).String())
}

func TestVersionString(t *testing.T) {
	assert.Equal(t, "4.0.0.0", Version{Major: 4}.String())
	assert.Equal(t, "1.2.3.4", Version{1, 2, 3, 4}.String())
}

func TestCustomAttributeSet(t *testing.T) {
	owner := AssemblyReferenceFromRow(1)
	rows := roaring.BitmapOf(3, 1, 9)
	s := NewCustomAttributeSet(owner, rows)

	assert.Equal(t, owner, s.Owner())
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains(9))
	assert.False(t, s.Contains(2))

	var got []uint32
	for r := range s.Rows() {
		got = append(got, r)
	}
	assert.Equal(t, []uint32{1, 3, 9}, got)

	assert.True(t, s.Equal(NewCustomAttributeSet(owner, roaring.BitmapOf(1, 3, 9))))
	assert.False(t, s.Equal(NewCustomAttributeSet(AssemblyReferenceFromRow(2), rows)))

	empty := NewCustomAttributeSet(owner, nil)
	assert.Equal(t, 0, empty.Len())
	assert.True(t, empty.Equal(NewCustomAttributeSet(owner, roaring.New())))
	for range empty.Rows() {
		t.Fatal("empty set yielded a row")
	}
}
