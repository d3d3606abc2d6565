package fmmap

import (
	"fmt"

	"github.com/hupe1980/fmmap/internal/mmap"
)

// resize changes the file length to size and brings the mapping in line
// with it.
//
// With atomic set the file is resized under the live mapping and the mapping
// is then moved in place. Otherwise the mapping is released before the file
// length changes and re-established afterwards, which is the only order some
// platforms accept.
//
// A KindRemapFailed error means no valid mapping is left; the caller must
// stop using d.
func (d *diskBackend) resize(size int64, atomic bool) error {
	if size < 0 {
		return newError(KindOutOfRange, d.name, fmt.Sprintf("negative size %d", size), ErrOutOfRange)
	}
	if d.region.Mode() == mmap.ModeCopyOnWrite {
		return newError(KindTruncationFailed, d.name, "copy-on-write mappings cannot be resized", ErrInvalidOperation)
	}

	fi, err := d.file.Stat()
	if err != nil {
		return newError(KindIO, d.name, "stat", err)
	}
	old := fi.Size()

	if n := d.region.Len(); old > 0 && n > 0 {
		if err := d.region.Flush(0, n, false); err != nil {
			return newError(KindFlushFailed, d.name, "", err)
		}
	}

	if atomic {
		if err := d.file.Truncate(size); err != nil {
			return newError(KindTruncationFailed, d.name, "", err)
		}
		if err := d.region.Remap(size); err != nil {
			return newError(KindRemapFailed, d.name, "", err)
		}
		return nil
	}

	if err := d.region.Unmap(); err != nil {
		return newError(KindRemapFailed, d.name, "unmap", err)
	}
	if err := d.file.Truncate(size); err != nil {
		if rerr := d.remap(old); rerr != nil {
			return newError(KindRemapFailed, d.name, "restore after failed truncate", rerr)
		}
		return newError(KindTruncationFailed, d.name, "", err)
	}
	if err := d.remap(size); err != nil {
		return newError(KindRemapFailed, d.name, "", err)
	}
	return nil
}

// remap replaces the released region with a fresh one covering a file of
// fileSize bytes.
func (d *diskBackend) remap(fileSize int64) error {
	cfg := d.region.Config()
	cfg.Len = 0
	r, err := mmap.Map(d.file.Fd(), fileSize, cfg)
	if err != nil {
		return err
	}
	d.region = r
	return nil
}
