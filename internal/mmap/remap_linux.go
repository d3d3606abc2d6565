//go:build linux

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

// AtomicRemap reports whether a live mapping may be resized in place while
// the underlying file changes length.
const AtomicRemap = true

const (
	populateFlag = unix.MAP_POPULATE
	stackFlag    = unix.MAP_STACK
)

func osRemap(raw []byte, length int) ([]byte, error) {
	data, err := unix.Mremap(raw, length, unix.MREMAP_MAYMOVE)
	if err != nil {
		return nil, os.NewSyscallError("mremap", err)
	}
	return data, nil
}
