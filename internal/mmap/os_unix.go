//go:build unix

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

type sysHandle struct{}

func granularity() int { return os.Getpagesize() }

func pageSize() int { return os.Getpagesize() }

func protFlags(mode Mode) (prot, flags int) {
	switch mode {
	case ModeReadWrite:
		return unix.PROT_READ | unix.PROT_WRITE, unix.MAP_SHARED
	case ModeCopyOnWrite:
		return unix.PROT_READ | unix.PROT_WRITE, unix.MAP_PRIVATE
	case ModeExec:
		return unix.PROT_READ | unix.PROT_EXEC, unix.MAP_SHARED
	default:
		return unix.PROT_READ, unix.MAP_SHARED
	}
}

func osMap(fd uintptr, offset int64, length int, cfg Config) ([]byte, sysHandle, error) {
	prot, flags := protFlags(cfg.Mode)
	if cfg.Populate {
		flags |= populateFlag
	}
	if cfg.Stack {
		flags |= stackFlag
	}

	data, err := unix.Mmap(int(fd), offset, length, prot, flags)
	if err != nil {
		return nil, sysHandle{}, os.NewSyscallError("mmap", err)
	}
	return data, sysHandle{}, nil
}

func osUnmap(raw []byte, _ sysHandle) error {
	if err := unix.Munmap(raw); err != nil {
		return os.NewSyscallError("munmap", err)
	}
	return nil
}

func osFlush(b []byte, async bool, _ sysHandle) error {
	flags := unix.MS_SYNC
	if async {
		flags = unix.MS_ASYNC
	}
	if err := unix.Msync(b, flags); err != nil {
		return os.NewSyscallError("msync", err)
	}
	return nil
}

func osProtect(raw []byte, mode Mode, _ sysHandle) error {
	prot, _ := protFlags(mode)
	if err := unix.Mprotect(raw, prot); err != nil {
		return os.NewSyscallError("mprotect", err)
	}
	return nil
}

func osAdvise(data []byte, pattern AccessPattern) error {
	var advice int
	switch pattern {
	case AccessSequential:
		advice = unix.MADV_SEQUENTIAL
	case AccessRandom:
		advice = unix.MADV_RANDOM
	case AccessWillNeed:
		advice = unix.MADV_WILLNEED
	case AccessDontNeed:
		advice = unix.MADV_DONTNEED
	default:
		advice = unix.MADV_NORMAL
	}

	// The hint is advisory; alignment complaints are not worth surfacing.
	err := unix.Madvise(data, advice)
	if err == unix.EINVAL {
		return nil
	}
	return err
}
