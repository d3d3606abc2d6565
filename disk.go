package fmmap

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/hupe1980/fmmap/internal/fs"
	"github.com/hupe1980/fmmap/internal/mmap"
)

// openMode selects how openDisk opens and maps the file.
type openMode uint8

const (
	openReadOnly openMode = iota
	openExec
	openCreate
	openReadWrite
	openExisting
	openCow
)

func (m openMode) String() string {
	switch m {
	case openReadOnly:
		return "read-only"
	case openExec:
		return "exec"
	case openCreate:
		return "create"
	case openReadWrite:
		return "read-write"
	case openExisting:
		return "existing"
	case openCow:
		return "copy-on-write"
	default:
		return "unknown"
	}
}

func (m openMode) flags() int {
	switch m {
	case openReadOnly, openExec:
		return os.O_RDONLY
	case openCreate:
		return os.O_RDWR | os.O_CREATE | os.O_EXCL
	case openReadWrite:
		return os.O_RDWR | os.O_CREATE
	default:
		return os.O_RDWR
	}
}

func (m openMode) mapMode() mmap.Mode {
	switch m {
	case openReadOnly:
		return mmap.ModeReadOnly
	case openExec:
		return mmap.ModeExec
	case openCow:
		return mmap.ModeCopyOnWrite
	default:
		return mmap.ModeReadWrite
	}
}

// diskBackend is a file mapped into memory. It owns both the open file and
// the mapping.
type diskBackend struct {
	region *mmap.Region
	file   fs.File
	name   string
	fsys   fs.FileSystem
}

func openDisk(path string, m openMode, o Options, e env) (*diskBackend, error) {
	file, err := openFile(e.fsys, path, o.openFlags(m.flags()), o)
	if err != nil {
		return nil, newError(KindOpenFailed, path, "", err)
	}

	d, err := mapFile(file, path, m, o, e.fsys)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return d, nil
}

func mapFile(file fs.File, path string, m openMode, o Options, fsys fs.FileSystem) (*diskBackend, error) {
	fi, err := file.Stat()
	if err != nil {
		return nil, newError(KindOpenFailed, path, "stat", err)
	}

	size := fi.Size()
	if m.mapMode().Writable() && size == 0 && o.maxSize > 0 {
		if err := file.Truncate(o.maxSize); err != nil {
			return nil, newError(KindTruncationFailed, path, "", err)
		}
		if err := fs.SyncDir(fsys, parentDir(path)); err != nil {
			return nil, newError(KindSyncDirFailed, path, "", err)
		}
		size = o.maxSize
	}

	region, err := mmap.Map(file.Fd(), size, mmap.Config{
		Offset:   o.offset,
		Len:      o.length,
		Mode:     m.mapMode(),
		Populate: o.populate,
		Stack:    o.stack,
	})
	if err != nil {
		return nil, mapError(path, err)
	}

	return &diskBackend{region: region, file: file, name: path, fsys: fsys}, nil
}

func mapError(path string, err error) error {
	if errors.Is(err, mmap.ErrInvalidOffset) || errors.Is(err, mmap.ErrInvalidSize) {
		return newError(KindOutOfRange, path, "", err)
	}
	return newError(KindMmapFailed, path, "", err)
}

// parentDir resolves the directory whose entry must be synced after a size
// change of path.
func parentDir(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.Dir(path)
}

func (d *diskBackend) kind() Backend { return BackendDisk }
func (d *diskBackend) bytes() []byte { return d.region.Bytes() }
func (d *diskBackend) path() string  { return d.name }
func (d *diskBackend) isExec() bool  { return d.region.Mode() == mmap.ModeExec }
func (d *diskBackend) isCow() bool   { return d.region.Mode() == mmap.ModeCopyOnWrite }

func (d *diskBackend) metadata() (MetaData, error) {
	fi, err := d.file.Stat()
	if err != nil {
		return MetaData{}, newError(KindIO, d.name, "stat", err)
	}
	return diskMetaData(d.name, fi), nil
}

func (d *diskBackend) lock(op lockOp) error {
	return lockFile(d.file.Fd(), op)
}

func (d *diskBackend) flush(off, n int, async bool) error {
	if err := checkRange(d.region.Len(), off, n); err != nil {
		return err
	}
	if err := d.region.Flush(off, n, async); err != nil {
		return newError(KindFlushFailed, d.name, "", err)
	}
	return nil
}

func (d *diskBackend) truncate(_ context.Context, size int64) error {
	return d.resize(size, mmap.AtomicRemap)
}

func (d *diskBackend) freeze(exec bool) (backend, error) {
	mode := mmap.ModeReadOnly
	if exec {
		mode = mmap.ModeExec
	}
	if err := d.region.Protect(mode); err != nil {
		return nil, newError(KindMmapFailed, d.name, "protect "+mode.String(), err)
	}
	return d, nil
}

func (d *diskBackend) release() error {
	uerr := d.region.Unmap()
	cerr := d.file.Close()
	if uerr != nil {
		return newError(KindMmapFailed, d.name, "unmap", uerr)
	}
	if cerr != nil {
		return newError(KindIO, d.name, "close", cerr)
	}
	return nil
}

// abandon closes the file and leaves the region mapped. The file is never
// truncated here: that would fault any slice still pointing into it.
func (d *diskBackend) abandon(unlink bool) error {
	if err := d.file.Close(); err != nil {
		return newError(KindIO, d.name, "close", err)
	}
	if unlink {
		if err := d.fsys.Remove(d.name); err != nil {
			return newError(KindIO, d.name, "remove", err)
		}
	}
	return nil
}

// remove unmaps, empties and closes the file, then deletes it.
func (d *diskBackend) remove() error {
	if err := d.region.Unmap(); err != nil {
		_ = d.file.Close()
		return newError(KindMmapFailed, d.name, "unmap", err)
	}
	if err := d.file.Truncate(0); err != nil {
		_ = d.file.Close()
		return newError(KindTruncationFailed, d.name, "", err)
	}
	if err := d.file.Close(); err != nil {
		return newError(KindIO, d.name, "close", err)
	}
	if err := d.fsys.Remove(d.name); err != nil {
		return newError(KindIO, d.name, "remove", err)
	}
	return nil
}

// closeWithTruncate flushes and unmaps, then sets the file length to size
// unless size is negative. The file is closed on every path.
func (d *diskBackend) closeWithTruncate(size int64) (err error) {
	defer func() {
		if cerr := d.file.Close(); cerr != nil && err == nil {
			err = newError(KindIO, d.name, "close", cerr)
		}
	}()

	if n := d.region.Len(); n > 0 {
		if ferr := d.region.Flush(0, n, false); ferr != nil {
			_ = d.region.Unmap()
			return newError(KindFlushFailed, d.name, "", ferr)
		}
	}
	if uerr := d.region.Unmap(); uerr != nil {
		return newError(KindMmapFailed, d.name, "unmap", uerr)
	}
	if size < 0 {
		return nil
	}
	if terr := d.file.Truncate(size); terr != nil {
		return newError(KindTruncationFailed, d.name, "", terr)
	}
	if serr := fs.SyncDir(d.fsys, parentDir(d.name)); serr != nil {
		return newError(KindSyncDirFailed, d.name, "", serr)
	}
	return nil
}
