package asmref

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hupe1980/asmref/blobstore"
	"github.com/hupe1980/asmref/internal/compress"
	"github.com/hupe1980/asmref/internal/ecma"
	"github.com/hupe1980/asmref/internal/hash"
	"github.com/hupe1980/asmref/model"
	"github.com/hupe1980/asmref/resource"
	"github.com/hupe1980/asmref/testutil"
	"github.com/hupe1980/asmref/winrt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// streamStore hides the Mappable side of MemoryStore blobs so that opens
// take the download path.
type streamStore struct {
	*blobstore.MemoryStore
}

type streamBlob struct {
	blobstore.Blob
}

func (s streamStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	b, err := s.MemoryStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return streamBlob{b}, nil
}

func mustCompress(t *testing.T, data []byte, codec compress.Codec) []byte {
	t.Helper()
	out, err := compress.Compress(data, codec)
	require.NoError(t, err)
	return out
}

func TestNewReader_Formats(t *testing.T) {
	img := testutil.WinMD()

	formats := map[string][]byte{
		"Metadata": img.Metadata,
		"PE":       img.PE(),
		"ZSTD":     mustCompress(t, img.PE(), compress.ZSTD),
		"LZ4":      mustCompress(t, img.Metadata, compress.LZ4),
	}

	for name, data := range formats {
		t.Run(name, func(t *testing.T) {
			r, err := NewReader(data)
			require.NoError(t, err)
			defer r.Close()

			assert.Equal(t, WindowsMetadata, r.Kind())
			assert.Equal(t, testutil.WindowsRuntimeVersion, r.MetadataVersion())
			assert.Equal(t, hash.Fingerprint(img.Metadata), r.Fingerprint())
			assert.Len(t, r.AssemblyReferences(), len(img.Refs)+winrt.Count)
		})
	}
}

func TestReader_WinMD(t *testing.T) {
	img := testutil.WinMD()
	r, err := NewReader(img.PE())
	require.NoError(t, err)
	defer r.Close()

	refs := make(map[string]AssemblyReference)
	for _, h := range r.AssemblyReferences() {
		ref, err := r.AssemblyReference(h)
		require.NoError(t, err)
		refs[ref.Name] = ref
	}

	windows := refs["Windows"]
	assert.False(t, windows.Virtual())
	assert.Equal(t, model.Version{Major: 255, Minor: 255, Build: 255, Revision: 255}, windows.Version)
	assert.Equal(t, model.AssemblyFlagsWindowsRuntime, windows.Flags)
	assert.Empty(t, windows.PublicKeyOrToken)

	mscorlib := refs["mscorlib"]
	assert.Equal(t, model.Version{Major: 4}, mscorlib.Version)
	assert.Equal(t, testutil.MscorlibToken, mscorlib.PublicKeyOrToken)
	assert.Equal(t, []byte{0xAA, 0xBB}, mscorlib.HashValue)
	assert.Equal(t, 2, mscorlib.CustomAttributes.Len())

	for _, ix := range winrt.VirtualIndices() {
		ref, ok := refs[ix.Name()]
		require.True(t, ok, ix.String())
		assert.True(t, ref.Virtual())
		assert.Empty(t, ref.Culture)
		assert.Nil(t, ref.HashValue)
		assert.True(t, mscorlib.CustomAttributes.Equal(ref.CustomAttributes))

		switch ix {
		case winrt.SystemRuntimeWindowsRuntime, winrt.SystemRuntimeWindowsRuntimeUIXaml:
			assert.Equal(t, testutil.MscorlibToken, ref.PublicKeyOrToken)
		default:
			token, _ := winrt.VirtualBlob(winrt.ContractPublicKeyToken)
			assert.Equal(t, token, ref.PublicKeyOrToken)
		}
	}

	assert.Equal(t,
		"System.Runtime, Version=4.0.0.0, Culture=neutral, PublicKeyToken=b03f5f7f11d50a3a",
		refs["System.Runtime"].FullName())
	assert.Equal(t,
		"System.Numerics.Vectors, Version=1.1.0.0, Culture=neutral, PublicKeyToken=b03f5f7f11d50a3a",
		refs["System.Numerics.Vectors"].FullName())
	assert.Equal(t,
		"Windows, Version=255.255.255.255, Culture=neutral, PublicKeyToken=null",
		windows.FullName())

	def, ok, err := r.Assembly()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Contoso", def.Name)
}

func TestReader_CustomAttributes(t *testing.T) {
	img := testutil.WinMD()
	r, err := NewReader(img.Metadata)
	require.NoError(t, err)
	defer r.Close()

	rows := img.Attributes[img.Anchor]
	require.Len(t, rows, 2)

	for i, row := range rows {
		ca, err := r.CustomAttribute(row)
		require.NoError(t, err)
		assert.Equal(t, "System.Runtime.Versioning.TargetFrameworkAttribute", ca.TypeName())
		assert.Equal(t, []byte{0x01, 0x00, byte(i), 0x00, 0x00}, ca.Value)

		ns, name, err := r.CustomAttributeType(row)
		require.NoError(t, err)
		assert.Equal(t, "System.Runtime.Versioning", ns)
		assert.Equal(t, "TargetFrameworkAttribute", name)
	}

	_, err = r.CustomAttribute(1000)
	assert.ErrorIs(t, err, ecma.ErrRowOutOfRange)
}

func TestReader_Ecma(t *testing.T) {
	img := testutil.Ecma()
	r, err := NewReader(img.PE())
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, Ecma335, r.Kind())
	assert.False(t, r.Session().Projected())

	handles := r.AssemblyReferences()
	require.Len(t, handles, 2)
	for _, h := range handles {
		assert.False(t, h.IsVirtual())
	}
}

func TestReader_WithoutProjections(t *testing.T) {
	img := testutil.WinMD()
	r, err := NewReader(img.Metadata, WithoutProjections())
	require.NoError(t, err)
	defer r.Close()

	assert.Len(t, r.AssemblyReferences(), len(img.Refs))

	ref, err := r.AssemblyReference(model.AssemblyReferenceFromRow(img.Anchor))
	require.NoError(t, err)
	assert.Equal(t, img.AnchorRef().Version, ref.Version)
}

func TestReader_RandomImages(t *testing.T) {
	rng := testutil.NewRNG(4711)
	contractKey, _ := winrt.VirtualBlob(winrt.ContractPublicKey)
	contractToken, _ := winrt.VirtualBlob(winrt.ContractPublicKeyToken)

	for range 25 {
		img := rng.RandomImage(12)
		r, err := NewReader(img.PE())
		require.NoError(t, err)

		anchor := img.AnchorRef()
		for row, want := range img.Refs {
			ref, err := r.AssemblyReference(model.AssemblyReferenceFromRow(uint32(row + 1)))
			require.NoError(t, err)

			if uint32(row+1) == img.Anchor {
				assert.Equal(t, model.Version{Major: 4}, ref.Version)
			} else {
				assert.Equal(t, want.Version, ref.Version)
			}
			assert.Equal(t, want.Name, ref.Name)
			assert.Equal(t, want.Flags, ref.Flags)
			assert.Equal(t, len(want.PublicKeyOrToken), len(ref.PublicKeyOrToken))
			assert.Equal(t, want.Attributes, ref.CustomAttributes.Len())
		}

		for _, ix := range winrt.VirtualIndices() {
			ref, err := r.AssemblyReference(model.AssemblyReferenceFromVirtualIndex(uint32(ix)))
			require.NoError(t, err)
			assert.Equal(t, anchor.Flags, ref.Flags)
			assert.Equal(t, anchor.Attributes, ref.CustomAttributes.Len())

			switch {
			case ix == winrt.SystemRuntimeWindowsRuntime || ix == winrt.SystemRuntimeWindowsRuntimeUIXaml:
				assert.Equal(t, anchor.PublicKeyOrToken, ref.PublicKeyOrToken)
			case anchor.Flags.HasPublicKey():
				assert.Equal(t, contractKey, ref.PublicKeyOrToken)
			default:
				assert.Equal(t, contractToken, ref.PublicKeyOrToken)
			}
		}
		require.NoError(t, r.Close())
	}
}

func TestNewReader_Errors(t *testing.T) {
	t.Run("Unsupported", func(t *testing.T) {
		_, err := NewReader([]byte("definitely not metadata"))
		assert.ErrorIs(t, err, ErrUnsupportedImage)
	})

	t.Run("MissingAnchor", func(t *testing.T) {
		img := testutil.Build(testutil.WindowsRuntimeVersion, []testutil.Ref{{Name: "Windows"}})
		_, err := NewReader(img.Metadata)
		assert.ErrorIs(t, err, ecma.ErrMissingAnchor)

		r, err := NewReader(img.Metadata, WithoutProjections())
		require.NoError(t, err)
		require.NoError(t, r.Close())
	})

	t.Run("Truncated", func(t *testing.T) {
		img := testutil.WinMD()
		_, err := NewReader(img.Metadata[:40])
		var fe *ecma.FormatError
		assert.ErrorAs(t, err, &fe)
	})

	t.Run("TooLarge", func(t *testing.T) {
		data := mustCompress(t, testutil.WinMD().PE(), compress.ZSTD)
		_, err := NewReader(data, WithMaxImageSize(64))
		assert.ErrorIs(t, err, compress.ErrTooLarge)
	})
}

func TestReader_Close(t *testing.T) {
	r, err := NewReader(testutil.WinMD().Metadata)
	require.NoError(t, err)

	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.Close(), ErrClosed)

	_, err = r.String(model.StringFromOffset(1))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = r.AssemblyReference(model.AssemblyReferenceFromRow(1))
	assert.ErrorIs(t, err, ErrClosed)

	// Virtual constants do not touch the image.
	name, err := r.String(model.StringFromVirtualIndex(uint32(winrt.SystemObjectModel)))
	require.NoError(t, err)
	assert.Equal(t, "System.ObjectModel", name)
}

func TestOpen_Stores(t *testing.T) {
	ctx := context.Background()
	img := testutil.WinMD()

	t.Run("Memory", func(t *testing.T) {
		store := blobstore.NewMemoryStore()
		require.NoError(t, store.Put(ctx, "Windows.winmd", img.PE()))

		r, err := Open(ctx, store, "Windows.winmd")
		require.NoError(t, err)
		defer r.Close()
		assert.Equal(t, "Windows.winmd", r.Name())
		assert.True(t, r.Session().Projected())
	})

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "Windows.winmd")
		require.NoError(t, os.WriteFile(path, mustCompress(t, img.PE(), compress.LZ4), 0o644))

		r, err := OpenFile(path)
		require.NoError(t, err)
		defer r.Close()
		assert.Equal(t, hash.Fingerprint(img.Metadata), r.Fingerprint())
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := Open(ctx, blobstore.NewMemoryStore(), "missing.winmd")
		require.Error(t, err)
		assert.True(t, IsNotFound(err))

		var oe *ErrOpen
		require.ErrorAs(t, err, &oe)
		assert.Equal(t, "missing.winmd", oe.Name)
	})
}

func TestOpen_MemoryAccounting(t *testing.T) {
	ctx := context.Background()
	data := testutil.WinMD().PE()
	store := streamStore{blobstore.NewMemoryStore()}
	require.NoError(t, store.Put(ctx, "a.winmd", data))

	rc := resource.NewController(resource.Config{MemoryLimitBytes: int64(len(data)) * 4})
	r, err := Open(ctx, store, "a.winmd", WithResourceController(rc))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), rc.MemoryUsage())

	require.NoError(t, r.Close())
	assert.Zero(t, rc.MemoryUsage())

	small := resource.NewController(resource.Config{MemoryLimitBytes: 16})
	_, err = Open(ctx, store, "a.winmd", WithResourceController(small))
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Zero(t, small.MemoryUsage())
}

func TestOpenAll(t *testing.T) {
	ctx := context.Background()
	store := streamStore{blobstore.NewMemoryStore()}
	rng := testutil.NewRNG(7)

	names := []string{"a.winmd", "b.winmd", "c.winmd", "d.winmd"}
	for _, name := range names {
		require.NoError(t, store.Put(ctx, name, mustCompress(t, rng.RandomImage(6).PE(), compress.ZSTD)))
	}

	rc := resource.NewController(resource.Config{MaxConcurrentOpens: 2})
	metrics := &BasicMetricsCollector{}

	readers, err := OpenAll(ctx, store, names,
		WithResourceController(rc), WithParallelism(3), WithMetricsCollector(metrics))
	require.NoError(t, err)
	require.Len(t, readers, len(names))
	for i, r := range readers {
		assert.Equal(t, names[i], r.Name())
		require.NoError(t, r.Close())
	}
	assert.Zero(t, rc.MemoryUsage())

	stats := metrics.GetStats()
	assert.Equal(t, int64(len(names)), stats.OpenCount)
	assert.Zero(t, stats.OpenErrors)

	t.Run("Failure", func(t *testing.T) {
		_, err := OpenAll(ctx, store, append(names, "missing.winmd"), WithResourceController(rc))
		require.Error(t, err)
		assert.True(t, errors.Is(err, blobstore.ErrNotFound))
		assert.Zero(t, rc.MemoryUsage())
	})
}

func TestOpenAll_MemoryBudget(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data := testutil.WinMD().PE()
	store := streamStore{blobstore.NewMemoryStore()}
	names := []string{"a.winmd", "b.winmd"}
	for _, name := range names {
		require.NoError(t, store.Put(ctx, name, data))
	}

	// Each image fits on its own, both together do not.
	rc := resource.NewController(resource.Config{MemoryLimitBytes: int64(len(data)) * 3 / 2})
	_, err := OpenAll(ctx, store, names, WithResourceController(rc), WithParallelism(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, rc.MemoryUsage())

	for _, name := range names {
		r, err := Open(ctx, store, name, WithResourceController(rc))
		require.NoError(t, err)
		require.NoError(t, r.Close())
	}

	roomy := resource.NewController(resource.Config{MemoryLimitBytes: int64(len(data)) * 2})
	readers, err := OpenAll(ctx, store, names, WithResourceController(roomy))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data))*2, roomy.MemoryUsage())
	for _, r := range readers {
		require.NoError(t, r.Close())
	}
	assert.Zero(t, roomy.MemoryUsage())
}

func TestOpen_DecompressesOnce(t *testing.T) {
	ctx := context.Background()
	twice := mustCompress(t, mustCompress(t, testutil.WinMD().PE(), compress.ZSTD), compress.LZ4)

	store := streamStore{blobstore.NewMemoryStore()}
	require.NoError(t, store.Put(ctx, "nested.winmd", twice))

	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20})
	_, err := Open(ctx, store, "nested.winmd", WithResourceController(rc))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	assert.Zero(t, rc.MemoryUsage())

	_, err = NewReader(twice)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}
