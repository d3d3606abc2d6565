package blobstore

import (
	"context"
	"io"
)

// CompressedStore wraps a BlobStore and compresses every blob in blocks.
// Open decompresses the whole blob into memory.
type CompressedStore struct {
	inner     BlobStore
	codec     Compression
	blockSize int
}

// NewCompressedStore returns a store writing c-compressed blobs to inner.
// Blobs written with any codec can be read back.
func NewCompressedStore(inner BlobStore, c Compression) *CompressedStore {
	return &CompressedStore{inner: inner, codec: c, blockSize: DefaultBlockSize}
}

// WithBlockSize returns a copy using n-byte blocks.
func (s *CompressedStore) WithBlockSize(n int) *CompressedStore {
	cp := *s
	cp.blockSize = n
	return &cp
}

func (s *CompressedStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	raw, err := readAll(ctx, b)
	if err != nil {
		return nil, err
	}
	data, err := decode(raw)
	if err != nil {
		return nil, err
	}
	return &memoryBlob{data: data}, nil
}

func (s *CompressedStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	w, err := s.inner.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return &compressedWritableBlob{inner: w, bw: newBlockWriter(w, s.codec, s.blockSize)}, nil
}

func (s *CompressedStore) Put(ctx context.Context, name string, data []byte) error {
	enc, err := encode(data, s.codec, s.blockSize)
	if err != nil {
		return err
	}
	return s.inner.Put(ctx, name, enc)
}

func (s *CompressedStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}

func (s *CompressedStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

type compressedWritableBlob struct {
	inner WritableBlob
	bw    *blockWriter
}

func (w *compressedWritableBlob) Write(p []byte) (int, error) {
	return w.bw.Write(p)
}

func (w *compressedWritableBlob) Sync() error {
	if err := w.bw.Flush(); err != nil {
		return err
	}
	return w.inner.Sync()
}

func (w *compressedWritableBlob) Close() error {
	if err := w.bw.Flush(); err != nil {
		_ = w.inner.Close()
		return err
	}
	return w.inner.Close()
}

// readAll reads a whole blob, without copying when it is Mappable.
func readAll(ctx context.Context, b Blob) ([]byte, error) {
	if m, ok := b.(Mappable); ok {
		if data, err := m.Bytes(); err == nil {
			return data, nil
		}
	}
	buf := make([]byte, b.Size())
	n, err := b.ReadAt(ctx, buf, 0)
	if err != nil && (err != io.EOF || n != len(buf)) {
		return nil, err
	}
	return buf, nil
}
