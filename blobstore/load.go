package blobstore

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/fmmap"
)

// Load opens name as a read-only facade.
//
// A blob from a LocalStore keeps its disk mapping. Every other blob is
// copied into a memory backend whose path is name.
func Load(ctx context.Context, store BlobStore, name string) (*fmmap.MmapFile, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	if lb, ok := b.(*localBlob); ok {
		return lb.release(), nil
	}
	defer b.Close()

	data, err := copyAll(ctx, b)
	if err != nil {
		return nil, err
	}
	return fmmap.NewMemory(name, data), nil
}

// LoadMut copies name into a writable memory facade.
func LoadMut(ctx context.Context, store BlobStore, name string) (*fmmap.MmapFileMut, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	data, err := copyAll(ctx, b)
	if err != nil {
		return nil, err
	}
	return fmmap.NewMemoryMut(name, data), nil
}

func copyAll(ctx context.Context, b Blob) ([]byte, error) {
	data, err := readAll(ctx, b)
	if err != nil {
		return nil, err
	}
	if _, ok := b.(Mappable); ok {
		// Mappable bytes die with the blob.
		data = append([]byte(nil), data...)
	}
	return data, nil
}

// Source is anything whose full contents can be copied out.
// Both *fmmap.MmapFile and *fmmap.MmapFileMut satisfy it.
type Source interface {
	CopyAllToVec() []byte
}

// Save stores a copy of src under name.
func Save(ctx context.Context, store BlobStore, name string, src Source) error {
	return store.Put(ctx, name, src.CopyAllToVec())
}

// SaveAll saves every entry of files concurrently, at most limit at a time.
// A limit <= 0 means no limit.
func SaveAll(ctx context.Context, store BlobStore, files map[string]Source, limit int) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for name, src := range files {
		g.Go(func() error {
			return Save(ctx, store, name, src)
		})
	}
	return g.Wait()
}
