package blobstore

import (
	"context"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/fmmap"
)

func TestLoad_LocalStoreKeepsMapping(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())
	require.NoError(t, store.Put(ctx, "seg.bin", []byte("mapped bytes")))

	f, err := Load(ctx, store, "seg.bin")
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, fmmap.BackendDisk, f.Backend())
	assert.Equal(t, store.Path("seg.bin"), f.Path())
	assert.Equal(t, "mapped bytes", string(f.AsSlice()))
}

func TestLoad_OtherStoresUseMemory(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "seg.bin", []byte("in memory")))

	f, err := Load(ctx, store, "seg.bin")
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, fmmap.BackendMemory, f.Backend())
	assert.Equal(t, "seg.bin", f.Path())
	assert.Equal(t, "in memory", string(f.AsSlice()))

	_, err = Load(ctx, store, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadMut_Save(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())
	require.NoError(t, store.Put(ctx, "m.bin", make([]byte, 8)))

	f, err := LoadMut(ctx, store, "m.bin")
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, f.WriteUint32(0xDEADBEEF, 2, binary.BigEndian))
	require.NoError(t, Save(ctx, store, "m.bin", f))

	got, err := Load(ctx, store, "m.bin")
	require.NoError(t, err)
	defer got.Close()

	v, err := got.ReadUint32(2, binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), v)
}

func TestSaveAll(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	files := make(map[string]Source)
	for i := range 10 {
		name := fmt.Sprintf("f-%02d", i)
		files[name] = fmmap.NewMemoryFromString(name, name)
	}
	require.NoError(t, SaveAll(ctx, store, files, 3))

	names, err := store.List(ctx, "f-")
	require.NoError(t, err)
	assert.Len(t, names, 10)

	f, err := Load(ctx, store, "f-07")
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "f-07", string(f.AsSlice()))
}
