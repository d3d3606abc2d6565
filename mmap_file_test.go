package fmmap_test

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/fmmap"
)

func writeTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestOpen_ReadOnlyDisk(t *testing.T) {
	path := writeTempFile(t, "ro.bin", []byte("Hello, read-only file!"))

	f, err := fmmap.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	assert.Equal(t, fmmap.BackendDisk, f.Backend())
	assert.Equal(t, path, f.Path())
	assert.Equal(t, 22, f.Len())
	assert.False(t, f.IsEmpty())
	assert.False(t, f.IsExec())
	assert.Equal(t, "Hello, read-only file!", string(f.AsSlice()))
	assert.Equal(t, "read-only", string(f.Slice(7, 9)))

	b, err := f.Bytes(0, 5)
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(b))

	_, err = f.Bytes(20, 5)
	assert.ErrorIs(t, err, fmmap.ErrUnexpectedEnd)
}

func TestOpen_Errors(t *testing.T) {
	_, err := fmmap.Open(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	var e *fmmap.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, fmmap.KindOpenFailed, e.Kind)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_OffsetAndLen(t *testing.T) {
	content := make([]byte, 3*os.Getpagesize())
	for i := range content {
		content[i] = byte(i % 251)
	}
	path := writeTempFile(t, "window.bin", content)

	f, err := fmmap.DefaultOptions().Offset(4099).Len(64).Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	assert.Equal(t, 64, f.Len())
	assert.Equal(t, content[4099:4099+64], f.AsSlice())

	_, err = fmmap.DefaultOptions().Offset(int64(len(content)) + 1).Open(path)
	assert.ErrorIs(t, err, fmmap.ErrOutOfRange)
}

func TestOpen_EmptyFile(t *testing.T) {
	path := writeTempFile(t, "empty.bin", nil)

	f, err := fmmap.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	assert.Equal(t, fmmap.BackendDisk, f.Backend())
	assert.True(t, f.IsEmpty())
	assert.Empty(t, f.AsSlice())
}

func TestNewMemory(t *testing.T) {
	f := fmmap.NewMemoryFromString("mem", "Hello, memory!")
	defer f.Close()

	assert.Equal(t, fmmap.BackendMemory, f.Backend())
	assert.Equal(t, "mem", f.Path())
	assert.Equal(t, 14, f.Len())

	b, err := f.CopyRangeToVec(7, 6)
	require.NoError(t, err)
	assert.Equal(t, "memory", string(b))

	md, err := f.Metadata()
	require.NoError(t, err)
	assert.Equal(t, fmmap.BackendMemory, md.Backend())
	assert.Equal(t, int64(14), md.Len())
	assert.False(t, md.IsFile())
	assert.Equal(t, md.ModTime(), md.CreateTime())
}

func TestRead(t *testing.T) {
	f := fmmap.NewMemory("mem", []byte("0123456789"))
	defer f.Close()

	dst := make([]byte, 4)
	assert.Equal(t, 4, f.Read(dst, 2))
	assert.Equal(t, "2345", string(dst))

	assert.Equal(t, 2, f.Read(dst, 8))
	assert.Equal(t, "89", string(dst[:2]))
	assert.Equal(t, 0, f.Read(dst, 10))

	require.NoError(t, f.ReadExact(dst, 6))
	assert.Equal(t, "6789", string(dst))
	assert.ErrorIs(t, f.ReadExact(dst, 7), io.ErrUnexpectedEOF)
}

func TestReadPastEnd_AllBackends(t *testing.T) {
	path := writeTempFile(t, "eight.bin", make([]byte, 8))
	disk, err := fmmap.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = disk.Close() })

	mem := fmmap.NewMemory("mem", make([]byte, 8))
	defer mem.Close()

	var empty fmmap.MmapFile

	for name, f := range map[string]*fmmap.MmapFile{"disk": disk, "memory": mem, "empty": &empty} {
		t.Run(name, func(t *testing.T) {
			_, err := f.ReadUint64(1, binary.LittleEndian)
			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

			_, err = f.ReadUint8(8)
			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

			_, err = f.ReadInt32(-1, binary.BigEndian)
			assert.Error(t, err)
		})
	}

	_, err = empty.ReadUint8(0)
	assert.ErrorIs(t, err, fmmap.ErrEmptyMmap)
}

func TestZeroValue(t *testing.T) {
	var f fmmap.MmapFile

	assert.Equal(t, fmmap.BackendEmpty, f.Backend())
	assert.Equal(t, 0, f.Len())
	assert.Equal(t, "", f.Path())
	assert.Empty(t, f.CopyAllToVec())

	_, err := f.Bytes(0, 0)
	assert.ErrorIs(t, err, fmmap.ErrEmptyMmap)
	_, err = f.Reader(0)
	assert.ErrorIs(t, err, fmmap.ErrEmptyMmap)

	md, err := f.Metadata()
	require.NoError(t, err)
	assert.Equal(t, int64(0), md.ModTime().Unix())

	assert.NoError(t, f.LockExclusive())
	assert.NoError(t, f.Unlock())
	assert.NoError(t, f.Close())
}

func TestDiskMetadata(t *testing.T) {
	path := writeTempFile(t, "meta.bin", make([]byte, 123))

	f, err := fmmap.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	md, err := f.Metadata()
	require.NoError(t, err)

	fi, err := os.Stat(path)
	require.NoError(t, err)

	assert.Equal(t, fmmap.BackendDisk, md.Backend())
	assert.Equal(t, int64(123), md.Len())
	assert.True(t, md.IsFile())
	assert.True(t, fi.ModTime().Equal(md.ModTime()))
	assert.Equal(t, fi.Mode(), md.Mode())
}

func TestClose_Idempotent(t *testing.T) {
	path := writeTempFile(t, "close.bin", []byte("data"))

	f, err := fmmap.Open(path)
	require.NoError(t, err)

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
	assert.Equal(t, fmmap.BackendEmpty, f.Backend())

	_, err = os.Stat(path)
	assert.NoError(t, err, "close must keep the file")
}

func TestWriteAllToNewFile(t *testing.T) {
	src := fmmap.NewMemoryFromString("mem", "copy me somewhere")
	defer src.Close()

	dir := t.TempDir()
	all := filepath.Join(dir, "all.bin")
	require.NoError(t, src.WriteAllToNewFile(t.Context(), all))

	got, err := os.ReadFile(all)
	require.NoError(t, err)
	assert.Equal(t, "copy me somewhere", string(got))

	part := filepath.Join(dir, "part.bin")
	require.NoError(t, src.WriteRangeToNewFile(t.Context(), part, 8, 9))

	got, err = os.ReadFile(part)
	require.NoError(t, err)
	assert.Equal(t, "somewhere", string(got))

	err = src.WriteAllToNewFile(t.Context(), all)
	assert.Error(t, err, "destination must not exist")

	err = src.WriteRangeToNewFile(t.Context(), filepath.Join(dir, "bad.bin"), 10, 100)
	assert.ErrorIs(t, err, fmmap.ErrUnexpectedEnd)
}

func TestAdvise(t *testing.T) {
	path := writeTempFile(t, "advise.bin", make([]byte, 4096))

	f, err := fmmap.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	assert.NoError(t, f.Advise(fmmap.AccessSequential))
	assert.NoError(t, fmmap.NewMemory("m", nil).Advise(fmmap.AccessRandom))
}
