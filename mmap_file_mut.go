package fmmap

import (
	"context"
	"errors"
	"runtime"
	"time"
)

// MmapFileMut is a writable mapping. The zero value is an empty mapping.
//
// Writes reach the backing file only after a successful Flush (or one of its
// variants), except for copy-on-write mappings whose writes never reach it.
//
// Truncate, Remove, CloseWithTruncate, Close, Freeze and FreezeExec replace
// the backend. Slices obtained earlier must not be used afterwards; Readers
// and Writers fail with ErrStaleView.
type MmapFileMut struct {
	view
}

// CreateMut creates path, which must not exist, and maps it read-write.
// Use Options.MaxSize to give the new file a length.
func CreateMut(path string) (*MmapFileMut, error) {
	return DefaultOptions().CreateMut(path)
}

// OpenMut maps path read-write, creating it if needed.
func OpenMut(path string) (*MmapFileMut, error) {
	return DefaultOptions().OpenMut(path)
}

// OpenExistingMut maps an existing file read-write.
func OpenExistingMut(path string) (*MmapFileMut, error) {
	return DefaultOptions().OpenExistingMut(path)
}

// OpenCowMut maps an existing file copy-on-write: writes are visible through
// the mapping but never reach the file.
func OpenCowMut(path string) (*MmapFileMut, error) {
	return DefaultOptions().OpenCowMut(path)
}

// NewMemoryMut wraps data as a writable memory mapping labelled path.
// The mapping takes ownership of data.
func NewMemoryMut(path string, data []byte) *MmapFileMut {
	return DefaultOptions().NewMemoryMut(path, data)
}

// NewMemoryMutWithCapacity returns an empty writable memory mapping whose
// buffer can grow to capacity without reallocating.
func NewMemoryMutWithCapacity(path string, capacity int) *MmapFileMut {
	return DefaultOptions().NewMemoryMut(path, make([]byte, 0, capacity))
}

// CreateMut creates path, which must not exist, and maps it read-write.
func (o Options) CreateMut(path string) (*MmapFileMut, error) {
	return o.openMut(path, openCreate)
}

// OpenMut maps path read-write, creating it if needed.
func (o Options) OpenMut(path string) (*MmapFileMut, error) {
	return o.openMut(path, openReadWrite)
}

// OpenExistingMut maps an existing file read-write.
func (o Options) OpenExistingMut(path string) (*MmapFileMut, error) {
	return o.openMut(path, openExisting)
}

// OpenCowMut maps an existing file copy-on-write.
func (o Options) OpenCowMut(path string) (*MmapFileMut, error) {
	return o.openMut(path, openCow)
}

// NewMemoryMut wraps data as a writable memory mapping labelled path.
func (o Options) NewMemoryMut(path string, data []byte) *MmapFileMut {
	e := o.env()
	return newMmapFileMut(newMemoryBackend(path, data, e.rc), e, o.removeOnDrop)
}

func (o Options) openMut(path string, m openMode) (*MmapFileMut, error) {
	e := o.env()
	be, err := timedOpen(path, m, o, e)
	if err != nil {
		return nil, err
	}
	return newMmapFileMut(be, e, o.removeOnDrop), nil
}

func newMmapFileMut(be backend, e env, removeOnDrop bool) *MmapFileMut {
	f := &MmapFileMut{view: view{s: newSlot(be, e, true)}}
	f.s.removeOnDrop.Store(removeOnDrop)
	runtime.SetFinalizer(f.s, (*slot).finalize)
	return f
}

// IsCow reports whether the mapping is copy-on-write.
func (f *MmapFileMut) IsCow() bool {
	s := f.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.be.isCow()
}

// RemoveOnDrop reports whether Close deletes the backing file.
func (f *MmapFileMut) RemoveOnDrop() bool { return f.st().removeOnDrop.Load() }

// SetRemoveOnDrop changes whether Close deletes the backing file.
func (f *MmapFileMut) SetRemoveOnDrop(v bool) { f.st().removeOnDrop.Store(v) }

// AsMutSlice returns the mapped bytes for writing. Writes through the slice
// are not tracked by FlushDirty.
func (f *MmapFileMut) AsMutSlice() []byte { return f.AsSlice() }

// SliceMut returns AsMutSlice()[off:off+n]. It panics if the range is out of bounds.
func (f *MmapFileMut) SliceMut(off, n int) []byte { return f.Slice(off, n) }

// BytesMut returns the n writable bytes at off, or an error if the range is
// out of bounds. The range is marked dirty.
func (f *MmapFileMut) BytesMut(off, n int) ([]byte, error) {
	s := f.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf, err := s.data()
	if err != nil {
		return nil, err
	}
	if err := checkRange(len(buf), off, n); err != nil {
		return nil, err
	}
	s.dirty.mark(off, n)
	return buf[off : off+n : off+n], nil
}

// Write copies as much of src as fits at off and returns the count.
func (f *MmapFileMut) Write(src []byte, off int) int {
	s := f.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf := s.be.bytes()
	if off < 0 || off >= len(buf) {
		return 0
	}
	n := copy(buf[off:], src)
	s.dirty.mark(off, n)
	return n
}

// WriteAll copies all of src to off or fails without writing.
func (f *MmapFileMut) WriteAll(src []byte, off int) error {
	s := f.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf, err := s.data()
	if err != nil {
		return err
	}
	if err := checkRange(len(buf), off, len(src)); err != nil {
		return err
	}
	copy(buf[off:], src)
	s.dirty.mark(off, len(src))
	return nil
}

// ZeroRange clears [start, end) with end clamped to Len. It panics if start
// is past Len.
func (f *MmapFileMut) ZeroRange(start, end int) {
	s := f.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf := s.be.bytes()
	zeroRange(buf, start, end)
	if end = min(end, len(buf)); end > start {
		s.dirty.mark(start, end-start)
	}
}

// Writer returns a cursor over [off, Len). off may equal Len. Its writes
// are durable only after a flush.
func (f *MmapFileMut) Writer(off int) (*Writer, error) {
	s := f.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf, err := s.data()
	if err != nil {
		return nil, err
	}
	if err := checkRange(len(buf), off, 0); err != nil {
		return nil, err
	}
	return &Writer{cursor: newCursor(s, off, len(buf)-off)}, nil
}

// RangeWriter returns a cursor over the n bytes at off.
func (f *MmapFileMut) RangeWriter(off, n int) (*Writer, error) {
	s := f.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf, err := s.data()
	if err != nil {
		return nil, err
	}
	if err := checkRange(len(buf), off, n); err != nil {
		return nil, err
	}
	return &Writer{cursor: newCursor(s, off, n)}, nil
}

// Flush synchronously writes every mapped page back to the file.
func (f *MmapFileMut) Flush() error { return f.flushAll(false) }

// FlushAsync schedules write-back of every mapped page and returns.
func (f *MmapFileMut) FlushAsync() error { return f.flushAll(true) }

// FlushRange synchronously writes back the n bytes at off.
func (f *MmapFileMut) FlushRange(off, n int) error { return f.flush(off, n, false) }

// FlushAsyncRange schedules write-back of the n bytes at off.
func (f *MmapFileMut) FlushAsyncRange(off, n int) error { return f.flush(off, n, true) }

func (f *MmapFileMut) flushAll(async bool) error {
	s := f.st()
	s.mu.RLock()
	n := len(s.be.bytes())
	s.mu.RUnlock()
	err := f.flush(0, n, async)
	if err == nil && !async {
		s.dirty.reset()
	}
	return err
}

func (f *MmapFileMut) flush(off, n int, async bool) error {
	s := f.st()
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := time.Now()
	err := s.be.flush(off, n, async)
	if s.be.kind() == BackendDisk {
		s.env.metrics.RecordFlush(n, time.Since(start), err)
	}
	return err
}

// FlushDirty synchronously writes back the pages modified through the checked
// write API since the last flush. Writes through AsMutSlice or SliceMut are
// not tracked; use Flush for those.
func (f *MmapFileMut) FlushDirty() error {
	s := f.st()
	s.mu.RLock()
	defer s.mu.RUnlock()

	pending := s.dirty.snapshot()
	if pending.IsEmpty() {
		return nil
	}

	start := time.Now()
	size := len(s.be.bytes())
	ps := s.dirty.pageSize
	flushed := 0
	var err error
	for _, r := range runs(pending) {
		off := r.first * ps
		if off >= size {
			break
		}
		n := min(r.count*ps, size-off)
		if err = s.be.flush(off, n, false); err != nil {
			break
		}
		flushed += n
	}
	s.env.metrics.RecordFlush(flushed, time.Since(start), err)
	if err != nil {
		return err
	}
	s.dirty.forget(pending)
	return nil
}

// DirtyPages returns the number of pages FlushDirty would write.
func (f *MmapFileMut) DirtyPages() int {
	s := f.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int(s.dirty.count())
}

// Truncate changes the length of the mapping and of its backing file.
//
// Copy-on-write mappings cannot be resized. If the mapping cannot be
// re-established after the file length changed, the file is closed and the
// mapping becomes empty; the error then has kind KindRemapFailed.
//
// ctx bounds the wait for a controller slot and for memory budget.
func (f *MmapFileMut) Truncate(ctx context.Context, size int64) error {
	s := f.st()
	rc := s.env.rc
	if err := rc.AcquireOp(ctx); err != nil {
		return err
	}
	defer rc.ReleaseOp()

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	path := s.be.path()
	old := int64(len(s.be.bytes()))

	err := s.be.truncate(ctx, size)
	s.gen++
	s.dirty.reset()

	var e *Error
	if errors.As(err, &e) && e.Kind == KindRemapFailed {
		broken := s.be
		s.be = emptyBackend{}
		s.dirty = nil
		_ = broken.release()
		s.env.logger.LogRemapDisabled(ctx, path, err)
	}

	s.env.metrics.RecordTruncate(size-old, time.Since(start), err)
	s.env.logger.LogTruncate(ctx, path, old, size, err)
	return err
}

// Remove unmaps the file, truncates it to zero, closes it and deletes it.
// The mapping is empty afterwards, whatever the outcome.
func (f *MmapFileMut) Remove(ctx context.Context) error {
	if f == nil || f.s == nil {
		return nil
	}
	s := f.s
	rc := s.env.rc
	if err := rc.AcquireOp(ctx); err != nil {
		return err
	}
	defer rc.ReleaseOp()

	runtime.SetFinalizer(s, nil)
	s.deleted.Store(true)
	return removeBackend(ctx, s, s.take())
}

func removeBackend(ctx context.Context, s *slot, be backend) error {
	if be.kind() == BackendEmpty {
		return nil
	}
	start := time.Now()
	err := be.remove()
	if be.kind() == BackendDisk {
		s.env.metrics.RecordRemove(time.Since(start), err)
		s.env.logger.LogRemove(ctx, be.path(), err)
	}
	return err
}

// CloseWithTruncate flushes and unmaps, then sets the file length to size
// and syncs the parent directory. A negative size keeps the current length.
// The file is closed and the mapping empty afterwards, whatever the outcome.
func (f *MmapFileMut) CloseWithTruncate(ctx context.Context, size int64) error {
	if f == nil || f.s == nil {
		return nil
	}
	s := f.s
	rc := s.env.rc
	if err := rc.AcquireOp(ctx); err != nil {
		return err
	}
	defer rc.ReleaseOp()

	runtime.SetFinalizer(s, nil)
	be := s.take()
	if be.kind() == BackendEmpty {
		return nil
	}

	start := time.Now()
	err := be.closeWithTruncate(size)
	s.env.metrics.RecordClose(time.Since(start), err)
	s.env.logger.LogClose(ctx, be.path(), size, err)
	return err
}

// Close releases the mapping and the file handle. If remove-on-drop is set
// and the file was not already removed, Close removes it instead.
// Close is idempotent.
func (f *MmapFileMut) Close() error {
	if f == nil || f.s == nil {
		return nil
	}
	s := f.s
	runtime.SetFinalizer(s, nil)
	be := s.take()
	if be.kind() == BackendEmpty {
		return nil
	}

	ctx := context.Background()
	if s.removeOnDrop.Load() && !s.deleted.Swap(true) {
		return removeBackend(ctx, s, be)
	}

	start := time.Now()
	err := be.release()
	s.env.metrics.RecordClose(time.Since(start), err)
	s.env.logger.LogClose(ctx, be.path(), -1, err)
	return err
}

// Freeze converts the mapping to read-only. The receiver becomes empty and
// will not remove the file on Close. On failure the receiver keeps its
// mapping.
func (f *MmapFileMut) Freeze() (*MmapFile, error) { return f.freeze(false) }

// FreezeExec converts the mapping to read-only and executable.
func (f *MmapFileMut) FreezeExec() (*MmapFile, error) { return f.freeze(true) }

func (f *MmapFileMut) freeze(exec bool) (*MmapFile, error) {
	s := f.st()
	be, dirty := s.takeTracked()
	path := be.path()

	frozen, err := be.freeze(exec)
	s.env.logger.LogFreeze(context.Background(), path, exec, err)
	if err != nil {
		s.put(be, dirty)
		return nil, err
	}

	s.removeOnDrop.Store(false)
	return newMmapFile(frozen, s.env), nil
}
