package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempFile(t *testing.T, content []byte) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "region.bin")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestRegion_ReadOnly(t *testing.T) {
	content := []byte("Hello, Mmap!")
	f := tempFile(t, content)

	r, err := Map(f.Fd(), int64(len(content)), Config{Mode: ModeReadOnly})
	require.NoError(t, err)
	defer r.Unmap()

	assert.Equal(t, len(content), r.Len())
	assert.Equal(t, content, r.Bytes())
	assert.Equal(t, ModeReadOnly, r.Mode())
}

func TestRegion_UnalignedOffset(t *testing.T) {
	content := make([]byte, 3*pageSize())
	for i := range content {
		content[i] = byte(i % 251)
	}
	f := tempFile(t, content)

	r, err := Map(f.Fd(), int64(len(content)), Config{Offset: 100, Len: 50, Mode: ModeReadOnly})
	require.NoError(t, err)
	defer r.Unmap()

	assert.Equal(t, content[100:150], r.Bytes())
}

func TestRegion_WriteAndFlush(t *testing.T) {
	f := tempFile(t, make([]byte, 64))

	r, err := Map(f.Fd(), 64, Config{Mode: ModeReadWrite})
	require.NoError(t, err)

	copy(r.Bytes()[10:], "flushed")
	require.NoError(t, r.Flush(10, 7, false))
	require.NoError(t, r.Flush(0, 64, true))
	assert.ErrorIs(t, r.Flush(60, 10, false), ErrOutOfBounds)
	require.NoError(t, r.Unmap())

	got, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Equal(t, "flushed", string(got[10:17]))
}

func TestRegion_CopyOnWriteDoesNotReachFile(t *testing.T) {
	f := tempFile(t, []byte("original"))

	r, err := Map(f.Fd(), 8, Config{Mode: ModeCopyOnWrite})
	require.NoError(t, err)

	copy(r.Bytes(), "modified")
	assert.Equal(t, "modified", string(r.Bytes()))
	require.NoError(t, r.Unmap())

	got, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))
}

func TestRegion_ZeroLength(t *testing.T) {
	f := tempFile(t, nil)

	r, err := Map(f.Fd(), 0, Config{Mode: ModeReadWrite})
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Bytes())
	require.NoError(t, r.Flush(0, 0, false))
	require.NoError(t, r.Unmap())
}

func TestRegion_Remap(t *testing.T) {
	f := tempFile(t, []byte("abcd"))

	r, err := Map(f.Fd(), 4, Config{Mode: ModeReadWrite})
	require.NoError(t, err)
	defer r.Unmap()

	require.NoError(t, f.Truncate(8192))
	require.NoError(t, r.Remap(8192))
	assert.Equal(t, 8192, r.Len())
	assert.Equal(t, "abcd", string(r.Bytes()[:4]))

	r.Bytes()[8191] = 'z'
	require.NoError(t, r.Flush(0, r.Len(), false))

	require.NoError(t, r.Remap(2))
	assert.Equal(t, "ab", string(r.Bytes()))

	require.NoError(t, r.Remap(0))
	assert.Equal(t, 0, r.Len())
}

func TestRegion_Protect(t *testing.T) {
	f := tempFile(t, []byte("frozen"))

	r, err := Map(f.Fd(), 6, Config{Mode: ModeReadWrite})
	require.NoError(t, err)
	defer r.Unmap()

	require.NoError(t, r.Protect(ModeReadOnly))
	assert.Equal(t, ModeReadOnly, r.Mode())
	assert.Equal(t, "frozen", string(r.Bytes()))
}

func TestRegion_Errors(t *testing.T) {
	f := tempFile(t, []byte("data"))

	_, err := Map(f.Fd(), 4, Config{Offset: -1})
	assert.ErrorIs(t, err, ErrInvalidOffset)

	_, err = Map(f.Fd(), 4, Config{Offset: 10})
	assert.ErrorIs(t, err, ErrInvalidOffset)

	_, err = Map(f.Fd(), 4, Config{Len: -1})
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestRegion_AfterUnmap(t *testing.T) {
	f := tempFile(t, []byte("data"))

	r, err := Map(f.Fd(), 4, Config{})
	require.NoError(t, err)
	require.NoError(t, r.Advise(AccessRandom))
	require.NoError(t, r.Unmap())
	require.NoError(t, r.Unmap())

	assert.Nil(t, r.Bytes())
	assert.Equal(t, 0, r.Len())
	assert.ErrorIs(t, r.Advise(AccessSequential), ErrClosed)
	assert.ErrorIs(t, r.Flush(0, 0, false), ErrClosed)
	assert.ErrorIs(t, r.Remap(8), ErrClosed)
	assert.ErrorIs(t, r.Protect(ModeReadOnly), ErrClosed)
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "read-only", ModeReadOnly.String())
	assert.Equal(t, "copy-on-write", ModeCopyOnWrite.String())
	assert.True(t, ModeReadWrite.Writable())
	assert.False(t, ModeExec.Writable())
}
