package winrt

import (
	"errors"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/asmref/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnchor struct {
	row   uint32
	flags model.AssemblyFlags
	key   model.BlobHandle
	attrs model.CustomAttributeSet
	err   error
}

func (f *fakeAnchor) RowFlags(row uint32) (model.AssemblyFlags, error) {
	if row != f.row {
		return 0, errors.New("unexpected row")
	}
	return f.flags, f.err
}

func (f *fakeAnchor) RowPublicKeyOrToken(row uint32) (model.BlobHandle, error) {
	if row != f.row {
		return model.BlobHandle{}, errors.New("unexpected row")
	}
	return f.key, f.err
}

func (f *fakeAnchor) CustomAttributesOf(row uint32) (model.CustomAttributeSet, error) {
	if row != f.row {
		return model.CustomAttributeSet{}, errors.New("unexpected row")
	}
	return f.attrs, f.err
}

func newFakeAnchor(flags model.AssemblyFlags) *fakeAnchor {
	return &fakeAnchor{
		row:   3,
		flags: flags,
		key:   model.BlobFromOffset(0x40),
		attrs: model.NewCustomAttributeSet(model.AssemblyReferenceFromRow(3), roaring.BitmapOf(2, 5)),
	}
}

func TestResolverVersion(t *testing.T) {
	r := NewResolver(newFakeAnchor(0), 3)
	for _, ix := range VirtualIndices() {
		want := model.Version{Major: 4}
		if ix == SystemNumericsVectors {
			want = model.Version{Major: 1, Minor: 1}
		}
		assert.Equal(t, want, r.Version(ix), ix.String())
	}
}

func TestResolverFlagsFollowAnchor(t *testing.T) {
	for _, flags := range []model.AssemblyFlags{0, model.AssemblyFlagsPublicKey, model.AssemblyFlagsRetargetable | model.AssemblyFlagsPublicKey} {
		r := NewResolver(newFakeAnchor(flags), 3)
		for _, ix := range VirtualIndices() {
			got, err := r.Flags(ix)
			require.NoError(t, err)
			assert.Equal(t, flags, got)
		}
	}
}

func TestResolverNames(t *testing.T) {
	r := NewResolver(newFakeAnchor(0), 3)
	seen := make(map[model.StringHandle]VirtualIndex)
	names := make(map[string]bool)
	for _, ix := range VirtualIndices() {
		h := r.Name(ix)
		require.True(t, h.IsVirtual())
		assert.Equal(t, h, r.Name(ix), "name handle must be stable")

		prev, dup := seen[h]
		require.False(t, dup, "%s shares a name handle with %s", ix, prev)
		seen[h] = ix

		s, ok := VirtualString(h.Offset())
		require.True(t, ok)
		assert.Equal(t, ix.Name(), s)
		assert.False(t, names[s])
		names[s] = true
	}
	assert.Len(t, names, Count)
}

func TestResolverCultureAndHashAreEmpty(t *testing.T) {
	r := NewResolver(newFakeAnchor(model.AssemblyFlagsPublicKey), 3)
	for _, ix := range VirtualIndices() {
		assert.True(t, r.Culture(ix).IsNil())
		assert.True(t, r.HashValue(ix).IsNil())
	}
}

func TestResolverPublicKeyOrToken(t *testing.T) {
	t.Run("WindowsRuntimeSlotsShareAnchorKey", func(t *testing.T) {
		for _, flags := range []model.AssemblyFlags{0, model.AssemblyFlagsPublicKey} {
			anchor := newFakeAnchor(flags)
			r := NewResolver(anchor, 3)
			for _, ix := range []VirtualIndex{SystemRuntimeWindowsRuntime, SystemRuntimeWindowsRuntimeUIXaml} {
				got, err := r.PublicKeyOrToken(ix)
				require.NoError(t, err)
				assert.Equal(t, anchor.key, got)
			}
		}
	})

	contractSlots := []VirtualIndex{SystemRuntime, SystemRuntimeInteropServicesWindowsRuntime, SystemObjectModel, SystemNumericsVectors}

	t.Run("FullKey", func(t *testing.T) {
		r := NewResolver(newFakeAnchor(model.AssemblyFlagsPublicKey), 3)
		for _, ix := range contractSlots {
			got, err := r.PublicKeyOrToken(ix)
			require.NoError(t, err)
			assert.Equal(t, model.BlobFromVirtualIndex(ContractPublicKey), got)
			b, ok := VirtualBlob(got.Offset())
			require.True(t, ok)
			assert.Len(t, b, 160)
		}
	})

	t.Run("Token", func(t *testing.T) {
		r := NewResolver(newFakeAnchor(model.AssemblyFlagsRetargetable), 3)
		for _, ix := range contractSlots {
			got, err := r.PublicKeyOrToken(ix)
			require.NoError(t, err)
			assert.Equal(t, model.BlobFromVirtualIndex(ContractPublicKeyToken), got)
			b, ok := VirtualBlob(got.Offset())
			require.True(t, ok)
			assert.Equal(t, []byte{0xB0, 0x3F, 0x5F, 0x7F, 0x11, 0xD5, 0x0A, 0x3A}, b)
		}
	})
}

func TestResolverCustomAttributesShareAnchor(t *testing.T) {
	anchor := newFakeAnchor(0)
	r := NewResolver(anchor, 3)
	for _, ix := range VirtualIndices() {
		got, err := r.CustomAttributes(ix)
		require.NoError(t, err)
		assert.True(t, anchor.attrs.Equal(got))
		assert.Equal(t, model.AssemblyReferenceFromRow(3), got.Owner())
	}
}

func TestResolverPropagatesAnchorErrors(t *testing.T) {
	boom := errors.New("corrupt blob heap")
	anchor := newFakeAnchor(0)
	anchor.err = boom
	r := NewResolver(anchor, 3)

	_, err := r.Flags(SystemRuntime)
	assert.ErrorIs(t, err, boom)
	_, err = r.PublicKeyOrToken(SystemObjectModel)
	assert.ErrorIs(t, err, boom)
	_, err = r.PublicKeyOrToken(SystemRuntimeWindowsRuntime)
	assert.ErrorIs(t, err, boom)
	_, err = r.CustomAttributes(SystemNumericsVectors)
	assert.ErrorIs(t, err, boom)
}

func TestResolverInvariantViolations(t *testing.T) {
	r := NewResolver(newFakeAnchor(0), 3)

	for _, ix := range []VirtualIndex{0, Count + 1, 1 << 20} {
		assertInvariant(t, func() { r.Version(ix) })
		assertInvariant(t, func() { _, _ = r.Flags(ix) })
		assertInvariant(t, func() { r.Name(ix) })
		assertInvariant(t, func() { r.Culture(ix) })
		assertInvariant(t, func() { _, _ = r.PublicKeyOrToken(ix) })
		assertInvariant(t, func() { r.HashValue(ix) })
		assertInvariant(t, func() { _, _ = r.CustomAttributes(ix) })
	}

	unanchored := NewResolver(newFakeAnchor(0), 0)
	assertInvariant(t, func() { unanchored.Version(SystemRuntime) })
}

func assertInvariant(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		rec := recover()
		require.NotNil(t, rec, "expected invariant panic")
		var ie *model.InvariantError
		require.ErrorAs(t, rec.(error), &ie)
	}()
	fn()
}
