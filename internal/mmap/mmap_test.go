package mmap

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.winmd")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestMmap_OpenReadClose(t *testing.T) {
	content := []byte("BSJB metadata root")
	m, err := Open(writeFile(t, content))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, len(content), m.Size())
	assert.Equal(t, content, m.Bytes())
	assert.NoError(t, m.Advise(AccessRandom))

	buf := make([]byte, 8)
	n, err := m.ReadAt(buf, 5)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, "metadata", string(buf))

	n, err = m.ReadAt(buf, 100)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)

	n, err = m.ReadAt(buf, 14)
	assert.Equal(t, 4, n)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, "root", string(buf[:n]))

	_, err = m.ReadAt(buf, -1)
	assert.Equal(t, ErrInvalidOffset, err)
}

func TestMmap_Close(t *testing.T) {
	m, err := Open(writeFile(t, []byte("abc")))
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Nil(t, m.Bytes())
	assert.Equal(t, ErrClosed, m.Advise(AccessSequential))

	_, err = m.ReadAt(make([]byte, 1), 0)
	assert.Equal(t, ErrClosed, err)
}

func TestMmap_EmptyFile(t *testing.T) {
	m, err := Open(writeFile(t, nil))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 0, m.Size())
	assert.Empty(t, m.Bytes())
}

func TestMmap_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMmap_AdviseDefault(t *testing.T) {
	m, err := Open(writeFile(t, []byte("BSJB")))
	require.NoError(t, err)
	defer m.Close()

	assert.NoError(t, m.Advise(AccessDefault))
	assert.NoError(t, m.Advise(AccessSequential))
}
