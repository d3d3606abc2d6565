package mmap

import (
	"errors"
	"math"
	"sync/atomic"
)

// Region is a mapped byte range over an open file.
// It owns the raw mapping and is responsible for unmapping it.
//
// The raw mapping always starts on an allocation boundary; the slice returned
// by Bytes starts at Config.Offset within it.
type Region struct {
	raw    []byte // exactly as returned by the OS; required for unmap
	data   []byte
	delta  int
	fd     uintptr
	cfg    Config
	sys    sysHandle
	closed atomic.Bool
}

// Map maps fd according to cfg. fileSize is the current length of the file
// and is only consulted when cfg.Len is zero.
//
// A zero-length request yields a valid Region without an OS mapping.
func Map(fd uintptr, fileSize int64, cfg Config) (*Region, error) {
	length, err := mappingLen(fileSize, cfg)
	if err != nil {
		return nil, err
	}

	r := &Region{fd: fd, cfg: cfg}
	if length == 0 {
		return r, nil
	}
	if err := r.mapRaw(length); err != nil {
		return nil, err
	}
	return r, nil
}

func mappingLen(fileSize int64, cfg Config) (int, error) {
	if cfg.Offset < 0 {
		return 0, ErrInvalidOffset
	}
	if cfg.Len < 0 {
		return 0, ErrInvalidSize
	}
	if cfg.Len > 0 {
		return cfg.Len, nil
	}
	if cfg.Offset > fileSize {
		return 0, ErrInvalidOffset
	}
	n := fileSize - cfg.Offset
	if n > math.MaxInt {
		return 0, ErrInvalidSize
	}
	return int(n), nil
}

func (r *Region) mapRaw(length int) error {
	delta := int(r.cfg.Offset % int64(granularity()))
	raw, sys, err := osMap(r.fd, r.cfg.Offset-int64(delta), length+delta, r.cfg)
	if err != nil {
		return err
	}
	r.raw, r.sys, r.delta = raw, sys, delta
	r.data = raw[delta : delta+length : delta+length]
	return nil
}

// Bytes returns the mapped bytes.
// The slice is valid only until Unmap or Remap is called.
func (r *Region) Bytes() []byte {
	if r.closed.Load() {
		return nil
	}
	return r.data
}

// Len returns the length of the mapped range.
func (r *Region) Len() int {
	if r.closed.Load() {
		return 0
	}
	return len(r.data)
}

// Mode returns the current protection mode.
func (r *Region) Mode() Mode { return r.cfg.Mode }

// Config returns the parameters the region was mapped with.
func (r *Region) Config() Config { return r.cfg }

// Flush writes dirty pages in [off, off+n) back to the file.
// With async set the call schedules the write-back and returns immediately.
func (r *Region) Flush(off, n int, async bool) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if off < 0 || n < 0 || off+n > len(r.data) {
		return ErrOutOfBounds
	}
	if n == 0 {
		return nil
	}
	start := r.delta + off
	aligned := start - start%pageSize()
	return osFlush(r.raw[aligned:start+n], async, r.sys)
}

// Unmap releases the mapping. It is idempotent.
func (r *Region) Unmap() error {
	if r.closed.Swap(true) {
		return nil
	}
	raw, sys := r.raw, r.sys
	r.raw, r.data = nil, nil
	if raw == nil {
		return nil
	}
	return osUnmap(raw, sys)
}

// Remap resizes the region to cover the file from Config.Offset to fileSize
// without releasing the mapping first. A fixed Config.Len is dropped. On Linux this is mremap(2); elsewhere the
// new range is mapped before the old one is released.
//
// Remap must only be used where the platform tolerates a live mapping over
// a file whose length changed (see AtomicRemap).
func (r *Region) Remap(fileSize int64) error {
	if r.closed.Load() {
		return ErrClosed
	}
	r.cfg.Len = 0
	length, err := mappingLen(fileSize, r.cfg)
	if err != nil {
		return err
	}

	switch {
	case length == len(r.data):
		return nil
	case len(r.raw) == 0:
		return r.mapRaw(length)
	case length == 0:
		raw, sys := r.raw, r.sys
		r.raw, r.data, r.sys = nil, nil, sysHandle{}
		return osUnmap(raw, sys)
	}

	raw, err := osRemap(r.raw, length+r.delta)
	if errors.Is(err, errRemapUnsupported) {
		old, oldSys := r.raw, r.sys
		if err := r.mapRaw(length); err != nil {
			return err
		}
		return osUnmap(old, oldSys)
	}
	if err != nil {
		return err
	}
	r.raw = raw
	r.data = raw[r.delta : r.delta+length : r.delta+length]
	return nil
}

// Protect changes the protection of the whole region.
func (r *Region) Protect(mode Mode) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if len(r.raw) > 0 {
		if err := osProtect(r.raw, mode, r.sys); err != nil {
			return err
		}
	}
	r.cfg.Mode = mode
	return nil
}

// Advise provides hints to the kernel about how the memory will be accessed.
func (r *Region) Advise(pattern AccessPattern) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if len(r.raw) == 0 {
		return nil
	}
	return osAdvise(r.raw, pattern)
}
