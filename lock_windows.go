//go:build windows

package fmmap

import (
	"errors"

	"golang.org/x/sys/windows"
)

// lockFile locks the whole file: one byte range covering every offset.
func lockFile(fd uintptr, op lockOp) error {
	h := windows.Handle(fd)
	ol := new(windows.Overlapped)

	var err error
	switch op {
	case lockUnlock:
		err = windows.UnlockFileEx(h, 0, ^uint32(0), ^uint32(0), ol)
	default:
		var flags uint32
		if op == lockExclusive || op == lockTryExclusive {
			flags |= windows.LOCKFILE_EXCLUSIVE_LOCK
		}
		if op == lockTryExclusive || op == lockTryShared {
			flags |= windows.LOCKFILE_FAIL_IMMEDIATELY
		}
		err = windows.LockFileEx(h, flags, 0, ^uint32(0), ^uint32(0), ol)
	}

	if errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
		return ErrWouldBlock
	}
	if err != nil {
		return newError(KindIO, "", "LockFileEx", err)
	}
	return nil
}
