package fmmap

import (
	"context"
	"time"
)

// Backend identifies the storage behind a facade.
type Backend uint8

const (
	// BackendEmpty is the inert placeholder left behind by consuming calls.
	BackendEmpty Backend = iota
	// BackendMemory is an owned byte buffer standing in for a mapping.
	BackendMemory
	// BackendDisk is a file mapped into the address space.
	BackendDisk
)

func (b Backend) String() string {
	switch b {
	case BackendEmpty:
		return "empty"
	case BackendMemory:
		return "memory"
	case BackendDisk:
		return "disk"
	default:
		return "unknown"
	}
}

// backend is implemented by exactly three types: *diskBackend,
// *memoryBackend and emptyBackend. Read-only facades only use the
// non-mutating half.
type backend interface {
	kind() Backend
	bytes() []byte
	path() string
	metadata() (MetaData, error)
	isExec() bool
	isCow() bool
	lock(op lockOp) error

	flush(off, n int, async bool) error
	truncate(ctx context.Context, size int64) error
	freeze(exec bool) (backend, error)

	// release is the normal drop: resources go, the file stays.
	release() error
	// remove is the delete protocol.
	remove() error
	closeWithTruncate(size int64) error
	// abandon is the finalizer path. Raw slices may outlive the facade, so
	// the mapping stays in place; only the handle is closed and, if unlink
	// is set, the directory entry removed.
	abandon(unlink bool) error
}

type lockOp uint8

const (
	lockExclusive lockOp = iota
	lockShared
	lockTryExclusive
	lockTryShared
	lockUnlock
)

var (
	_ backend = (*diskBackend)(nil)
	_ backend = (*memoryBackend)(nil)
	_ backend = emptyBackend{}
)

// emptyBackend answers every call with a zero-effect result where one is
// correct, and with ErrEmptyMmap where data would be required.
type emptyBackend struct{}

func (emptyBackend) kind() Backend     { return BackendEmpty }
func (emptyBackend) bytes() []byte     { return nil }
func (emptyBackend) path() string      { return "" }
func (emptyBackend) isExec() bool      { return false }
func (emptyBackend) isCow() bool       { return false }
func (emptyBackend) lock(lockOp) error { return nil }

func (emptyBackend) metadata() (MetaData, error) {
	epoch := time.Unix(0, 0)
	return MetaData{
		backend:    BackendEmpty,
		modTime:    epoch,
		accessTime: epoch,
		changeTime: epoch,
		createTime: epoch,
	}, nil
}

func (emptyBackend) flush(int, int, bool) error            { return nil }
func (emptyBackend) truncate(context.Context, int64) error { return nil }
func (e emptyBackend) freeze(bool) (backend, error)        { return e, nil }
func (emptyBackend) release() error                        { return nil }
func (emptyBackend) remove() error                         { return nil }
func (emptyBackend) closeWithTruncate(int64) error         { return nil }
func (emptyBackend) abandon(bool) error                    { return nil }
