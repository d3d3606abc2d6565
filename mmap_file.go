package fmmap

import (
	"bytes"
	"context"
	"io"
	"runtime"
	"time"

	"github.com/hupe1980/fmmap/internal/mmap"
	"github.com/hupe1980/fmmap/resource"
)

// AccessPattern hints the kernel about upcoming access to a disk mapping.
type AccessPattern = mmap.AccessPattern

const (
	AccessDefault    = mmap.AccessDefault
	AccessSequential = mmap.AccessSequential
	AccessRandom     = mmap.AccessRandom
	AccessWillNeed   = mmap.AccessWillNeed
	AccessDontNeed   = mmap.AccessDontNeed
)

// view is the read surface shared by MmapFile and MmapFileMut.
// A nil slot behaves as an empty mapping.
type view struct {
	s *slot
}

func (v view) st() *slot {
	if v.s == nil {
		return emptySlot()
	}
	return v.s
}

// Len returns the number of mapped bytes.
func (v view) Len() int {
	s := v.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.be.bytes())
}

// IsEmpty reports whether Len is zero.
func (v view) IsEmpty() bool { return v.Len() == 0 }

// Path returns the backing path. Memory mappings return their label and the
// empty backend returns "".
func (v view) Path() string {
	s := v.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.be.path()
}

// Backend reports the current storage kind.
func (v view) Backend() Backend {
	s := v.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.be.kind()
}

// IsExec reports whether the mapping is executable.
func (v view) IsExec() bool {
	s := v.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.be.isExec()
}

// Metadata describes the current backend.
func (v view) Metadata() (MetaData, error) {
	s := v.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.be.metadata()
}

// AsSlice returns the mapped bytes without copying. The slice is invalidated
// by any call that resizes, freezes, removes or closes the mapping. It does
// not keep the facade alive; a facade collected without Close leaves its
// mapping in place until the process exits.
func (v view) AsSlice() []byte {
	s := v.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.be.bytes()
}

// Slice returns AsSlice()[off:off+n]. It panics if the range is out of bounds.
func (v view) Slice(off, n int) []byte {
	b := v.AsSlice()
	return b[off : off+n : off+n]
}

// Bytes returns the n bytes at off without copying, or an error if the range
// is out of bounds.
func (v view) Bytes(off, n int) ([]byte, error) {
	s := v.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf, err := s.data()
	if err != nil {
		return nil, err
	}
	if err := checkRange(len(buf), off, n); err != nil {
		return nil, err
	}
	return buf[off : off+n : off+n], nil
}

// CopyAllToVec returns a copy of the mapped bytes.
func (v view) CopyAllToVec() []byte {
	s := v.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte{}, s.be.bytes()...)
}

// CopyRangeToVec returns a copy of the n bytes at off.
func (v view) CopyRangeToVec(off, n int) ([]byte, error) {
	s := v.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf := s.be.bytes()
	if err := checkRange(len(buf), off, n); err != nil {
		return nil, err
	}
	return bytes.Clone(buf[off : off+n]), nil
}

// WriteAllToNewFile creates path, sized to Len, and copies the mapping into
// it. The copy is throttled by the controller's IO limit.
func (v view) WriteAllToNewFile(ctx context.Context, path string) error {
	return v.WriteRangeToNewFile(ctx, path, 0, v.Len())
}

// WriteRangeToNewFile creates path, sized to n, and copies the n bytes at off
// into it.
func (v view) WriteRangeToNewFile(ctx context.Context, path string, off, n int) error {
	s := v.st()
	s.mu.RLock()
	defer s.mu.RUnlock()

	buf := s.be.bytes()
	if err := checkRange(len(buf), off, n); err != nil {
		return err
	}

	dst, err := s.env.options().MaxSize(int64(n)).CreateMut(path)
	if err != nil {
		return err
	}
	w, err := dst.Writer(0)
	if err == nil {
		_, err = io.Copy(resource.NewRateLimitedWriter(ctx, w, s.env.rc), bytes.NewReader(buf[off:off+n]))
	}
	if err == nil {
		err = dst.Flush()
	}
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	return err
}

// Read copies up to len(dst) bytes starting at off and returns the count.
// It returns 0 when off is at or past the end.
func (v view) Read(dst []byte, off int) int {
	s := v.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf := s.be.bytes()
	if off < 0 || off >= len(buf) {
		return 0
	}
	return copy(dst, buf[off:])
}

// ReadExact fills dst from off or fails without copying.
func (v view) ReadExact(dst []byte, off int) error {
	s := v.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf, err := s.data()
	if err != nil {
		return err
	}
	if err := checkRange(len(buf), off, len(dst)); err != nil {
		return err
	}
	copy(dst, buf[off:])
	return nil
}

// Reader returns a cursor over [off, Len). off may equal Len.
func (v view) Reader(off int) (*Reader, error) {
	s := v.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf, err := s.data()
	if err != nil {
		return nil, err
	}
	if err := checkRange(len(buf), off, 0); err != nil {
		return nil, err
	}
	return &Reader{cursor: newCursor(s, off, len(buf)-off)}, nil
}

// RangeReader returns a cursor over the n bytes at off.
func (v view) RangeReader(off, n int) (*Reader, error) {
	s := v.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf, err := s.data()
	if err != nil {
		return nil, err
	}
	if err := checkRange(len(buf), off, n); err != nil {
		return nil, err
	}
	return &Reader{cursor: newCursor(s, off, n)}, nil
}

// Advise passes an access hint to the kernel. It is a no-op for memory and
// empty backends.
func (v view) Advise(p AccessPattern) error {
	s := v.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.be.(*diskBackend)
	if !ok {
		return nil
	}
	if err := d.region.Advise(p); err != nil {
		return newError(KindIO, d.name, "madvise", err)
	}
	return nil
}

// LockExclusive blocks until an exclusive advisory lock on the backing file
// is held. Memory and empty backends succeed immediately.
func (v view) LockExclusive() error { return v.lock(lockExclusive) }

// LockShared blocks until a shared advisory lock is held.
func (v view) LockShared() error { return v.lock(lockShared) }

// TryLockExclusive returns ErrWouldBlock instead of waiting.
func (v view) TryLockExclusive() error { return v.lock(lockTryExclusive) }

// TryLockShared returns ErrWouldBlock instead of waiting.
func (v view) TryLockShared() error { return v.lock(lockTryShared) }

// Unlock releases an advisory lock.
func (v view) Unlock() error { return v.lock(lockUnlock) }

func (v view) lock(op lockOp) error {
	s := v.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	err := s.be.lock(op)
	if e, ok := err.(*Error); ok && e.Path == "" {
		e.Path = s.be.path()
	}
	return err
}

// MmapFile is a read-only mapping. The zero value is an empty mapping.
//
// An MmapFile must be closed. If it becomes unreachable first, a finalizer
// releases it.
type MmapFile struct {
	view
}

// Open maps the file at path read-only.
func Open(path string) (*MmapFile, error) {
	return DefaultOptions().Open(path)
}

// OpenExec maps the file at path read-only and executable.
func OpenExec(path string) (*MmapFile, error) {
	return DefaultOptions().OpenExec(path)
}

// NewMemory wraps data as a read-only memory mapping labelled path.
// The mapping takes ownership of data.
func NewMemory(path string, data []byte) *MmapFile {
	return DefaultOptions().NewMemory(path, data)
}

// NewMemoryFromString copies s into a read-only memory mapping.
func NewMemoryFromString(path, s string) *MmapFile {
	return DefaultOptions().NewMemory(path, []byte(s))
}

// Open maps the file at path read-only.
func (o Options) Open(path string) (*MmapFile, error) {
	return o.openReadOnly(path, openReadOnly)
}

// OpenExec maps the file at path read-only and executable.
func (o Options) OpenExec(path string) (*MmapFile, error) {
	return o.openReadOnly(path, openExec)
}

// NewMemory wraps data as a read-only memory mapping labelled path.
func (o Options) NewMemory(path string, data []byte) *MmapFile {
	e := o.env()
	return newMmapFile(newMemoryBackend(path, data, e.rc), e)
}

func (o Options) openReadOnly(path string, m openMode) (*MmapFile, error) {
	e := o.env()
	be, err := timedOpen(path, m, o, e)
	if err != nil {
		return nil, err
	}
	return newMmapFile(be, e), nil
}

func timedOpen(path string, m openMode, o Options, e env) (*diskBackend, error) {
	start := time.Now()
	be, err := openDisk(path, m, o, e)
	e.metrics.RecordOpen(time.Since(start), err)

	size := 0
	if be != nil {
		size = len(be.bytes())
	}
	e.logger.LogOpen(context.Background(), path, m.String(), size, err)
	return be, err
}

func newMmapFile(be backend, e env) *MmapFile {
	f := &MmapFile{view{s: newSlot(be, e, false)}}
	runtime.SetFinalizer(f.s, (*slot).finalize)
	return f
}

// Close releases the mapping and the file handle. The backing file is kept.
// Close is idempotent.
func (f *MmapFile) Close() error {
	if f == nil || f.s == nil {
		return nil
	}
	s := f.s
	runtime.SetFinalizer(s, nil)
	be := s.take()
	if be.kind() == BackendEmpty {
		return nil
	}

	start := time.Now()
	err := be.release()
	s.env.metrics.RecordClose(time.Since(start), err)
	s.env.logger.LogClose(context.Background(), be.path(), -1, err)
	return err
}
