package pe

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapLocate(t *testing.T) {
	metadata := []byte("BSJB-not-really-metadata-but-bytes")
	image := Wrap(metadata)

	assert.True(t, IsImage(image))
	assert.Zero(t, len(image)%fileAlignment)

	got, err := Locate(image)
	require.NoError(t, err)
	assert.Equal(t, metadata, got)
}

func TestLocateErrors(t *testing.T) {
	t.Run("NotPE", func(t *testing.T) {
		_, err := Locate([]byte("BSJB"))
		assert.Error(t, err)
		assert.False(t, IsImage([]byte("BSJB")))
	})

	t.Run("NoCLIHeader", func(t *testing.T) {
		image := Wrap([]byte{1, 2, 3, 4})
		// Data directory 14 of the PE32 optional header.
		dir := lfanew + 4 + 20 + 96 + clrDirectory*8
		binary.LittleEndian.PutUint32(image[dir:], 0)
		_, err := Locate(image)
		assert.ErrorIs(t, err, ErrNotManaged)
	})

	t.Run("MetadataOutsideSection", func(t *testing.T) {
		image := Wrap([]byte{1, 2, 3, 4})
		binary.LittleEndian.PutUint32(image[fileAlignment+12:], 0x10000)
		_, err := Locate(image)
		assert.ErrorIs(t, err, ErrBadRVA)
	})
}
