package blobstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)

	ctx := context.Background()

	// 1. Create a blob
	blobName := "data-001.bin"
	data := []byte("hello world, this is a mapped blob")

	w, err := store.Create(ctx, blobName)
	require.NoError(t, err)

	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)

	// Not visible until Close.
	_, err = os.Stat(filepath.Join(tmpDir, blobName))
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, w.Close())
	_, err = os.Stat(filepath.Join(tmpDir, blobName))
	require.NoError(t, err)

	// 2. Open and ReadAt
	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err = blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))

	n, err = blob.ReadAt(ctx, make([]byte, 10), int64(len(data))-4)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 4, n)

	// 3. ReadRange
	rangeReader, err := blob.ReadRange(ctx, 13, 4)
	require.NoError(t, err)
	defer rangeReader.Close()

	rangeContent, err := io.ReadAll(rangeReader)
	require.NoError(t, err)
	require.Equal(t, "this", string(rangeContent))

	// 4. Zero-copy access
	m, ok := blob.(Mappable)
	require.True(t, ok)
	b, err := m.Bytes()
	require.NoError(t, err)
	require.Equal(t, data, b)

	// 5. List
	w2, err := store.Create(ctx, "data-002.bin")
	require.NoError(t, err)
	require.NoError(t, w2.Close())

	blobs, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{blobName, "data-002.bin"}, blobs)

	// 6. Delete
	require.NoError(t, store.Delete(ctx, blobName))
	require.NoError(t, store.Delete(ctx, blobName), "deleting twice is fine")

	blobsAfter, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"data-002.bin"}, blobsAfter)

	_, err = store.Open(ctx, blobName)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_ReadRange_Boundaries(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	data := []byte("0123456789")
	require.NoError(t, store.Put(ctx, "boundary.bin", data))

	blob, err := store.Open(ctx, "boundary.bin")
	require.NoError(t, err)
	defer blob.Close()

	// Full range
	r, err := blob.ReadRange(ctx, 0, 10)
	require.NoError(t, err)
	content, _ := io.ReadAll(r)
	r.Close()
	require.True(t, bytes.Equal(data, content))

	// Past end: only 8 and 9 are there
	r, err = blob.ReadRange(ctx, 8, 5)
	require.NoError(t, err)
	content, err = io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "89", string(content))
	r.Close()

	// Offset past EOF
	r, err = blob.ReadRange(ctx, 20, 5)
	require.ErrorIs(t, err, io.EOF)
	if r != nil {
		r.Close()
	}
}

func TestLocalStore_PutReplaces(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("mapped files cannot be replaced on windows")
	}
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "nested/dir/a.bin", []byte("first")))

	old, err := store.Open(ctx, "nested/dir/a.bin")
	require.NoError(t, err)
	defer old.Close()

	require.NoError(t, store.Put(ctx, "nested/dir/a.bin", []byte("second!")))

	// The old mapping still sees the replaced file.
	buf := make([]byte, 5)
	_, err = old.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "first", string(buf))

	cur, err := store.Open(ctx, "nested/dir/a.bin")
	require.NoError(t, err)
	defer cur.Close()
	assert.Equal(t, int64(7), cur.Size())

	require.NoError(t, store.Put(ctx, "nested/b.bin", nil))
	names, err := store.List(ctx, "nested/dir/")
	require.NoError(t, err)
	assert.Equal(t, []string{"nested/dir/a.bin"}, names)
}

func TestLocalStore_MissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "absent"))

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_CanceledContext(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Put(ctx, "x", []byte("x")), context.Canceled)
	_, err := store.Open(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
