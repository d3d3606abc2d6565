package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/hupe1980/fmmap"
)

// LocalStore implements BlobStore on a local directory. Blobs are opened as
// read-only memory mappings and replaced atomically on write.
type LocalStore struct {
	root string
	opts fmmap.Options
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
// opts configures the mappings returned by Open; Offset and Len are ignored.
func NewLocalStore(root string, opts ...fmmap.Options) *LocalStore {
	o := fmmap.DefaultOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	return &LocalStore{root: root, opts: o.Offset(0).Len(0)}
}

// Path returns the file path of name.
func (s *LocalStore) Path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// Open maps the blob read-only.
func (s *LocalStore) Open(ctx context.Context, name string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := s.opts.Open(s.Path(name))
	if err != nil {
		return nil, err
	}
	return &localBlob{m: m}, nil
}

// Put replaces the blob atomically.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}

// Create writes to a temporary file that replaces the blob on Close.
func (s *LocalStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.Path(name)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, err
	}
	return &localWritableBlob{f: f, path: path}, nil
}

// Delete removes the blob.
func (s *LocalStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.Path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// List walks the root and returns slash-separated names starting with prefix.
func (s *LocalStore) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == s.root {
				return filepath.SkipAll
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.Contains(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		if name := filepath.ToSlash(rel); strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

type localBlob struct {
	m *fmmap.MmapFile
}

func (b *localBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("blobstore: negative offset")
	}
	if len(p) == 0 {
		return 0, nil
	}
	if off >= int64(b.m.Len()) {
		return 0, io.EOF
	}
	n := b.m.Read(p, int(off))
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *localBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	size := int64(b.m.Len())
	if off < 0 || off > size {
		return nil, io.EOF
	}
	length = min(length, size-off)
	r, err := b.m.RangeReader(int(off), int(length))
	if err != nil {
		return nil, err
	}
	return io.NopCloser(r), nil
}

func (b *localBlob) Close() error {
	return b.m.Close()
}

func (b *localBlob) Size() int64 {
	return int64(b.m.Len())
}

func (b *localBlob) Bytes() ([]byte, error) {
	return b.m.AsSlice(), nil
}

// release hands the mapping to the caller; Close becomes a no-op.
func (b *localBlob) release() *fmmap.MmapFile {
	m := b.m
	b.m = &fmmap.MmapFile{}
	return m
}

type localWritableBlob struct {
	f    *os.File
	path string
}

func (w *localWritableBlob) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

func (w *localWritableBlob) Sync() error {
	return w.f.Sync()
}

func (w *localWritableBlob) Close() error {
	tmp := w.f.Name()
	if err := w.f.Sync(); err != nil {
		_ = w.f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := w.f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := atomic.ReplaceFile(tmp, w.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
