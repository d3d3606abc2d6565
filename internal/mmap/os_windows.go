//go:build windows

package mmap

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

type sysHandle struct {
	mapping windows.Handle
	addr    uintptr
}

// Views must start on the allocation granularity, not just a page.
func granularity() int { return 64 << 10 }

func pageSize() int { return os.Getpagesize() }

func protAccess(mode Mode) (prot, access uint32) {
	switch mode {
	case ModeReadWrite:
		return windows.PAGE_READWRITE, windows.FILE_MAP_WRITE
	case ModeCopyOnWrite:
		return windows.PAGE_WRITECOPY, windows.FILE_MAP_COPY
	case ModeExec:
		return windows.PAGE_EXECUTE_READ, windows.FILE_MAP_READ | windows.FILE_MAP_EXECUTE
	default:
		return windows.PAGE_READONLY, windows.FILE_MAP_READ
	}
}

func osMap(fd uintptr, offset int64, length int, cfg Config) ([]byte, sysHandle, error) {
	prot, access := protAccess(cfg.Mode)
	if cfg.Mode == ModeExec {
		// The mapping object must allow execution; views narrow it per mode.
		prot = windows.PAGE_EXECUTE_READ
	}

	end := uint64(offset) + uint64(length)
	h, err := windows.CreateFileMapping(windows.Handle(fd), nil, prot, uint32(end>>32), uint32(end), nil)
	if err != nil {
		return nil, sysHandle{}, os.NewSyscallError("CreateFileMapping", err)
	}

	addr, err := windows.MapViewOfFile(h, access, uint32(uint64(offset)>>32), uint32(offset), uintptr(length))
	if err != nil {
		_ = windows.CloseHandle(h)
		return nil, sysHandle{}, os.NewSyscallError("MapViewOfFile", err)
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), length)
	return data, sysHandle{mapping: h, addr: addr}, nil
}

func osUnmap(_ []byte, sys sysHandle) error {
	err := windows.UnmapViewOfFile(sys.addr)
	if cerr := windows.CloseHandle(sys.mapping); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return os.NewSyscallError("UnmapViewOfFile", err)
	}
	return nil
}

// FlushViewOfFile has no asynchronous flavor; async is ignored.
func osFlush(b []byte, _ bool, _ sysHandle) error {
	if err := windows.FlushViewOfFile(uintptr(unsafe.Pointer(&b[0])), uintptr(len(b))); err != nil {
		return os.NewSyscallError("FlushViewOfFile", err)
	}
	return nil
}

func osProtect(raw []byte, mode Mode, _ sysHandle) error {
	var prot uint32
	switch mode {
	case ModeExec:
		prot = windows.PAGE_EXECUTE_READ
	case ModeReadWrite:
		prot = windows.PAGE_READWRITE
	case ModeCopyOnWrite:
		prot = windows.PAGE_WRITECOPY
	default:
		prot = windows.PAGE_READONLY
	}
	var old uint32
	if err := windows.VirtualProtect(uintptr(unsafe.Pointer(&raw[0])), uintptr(len(raw)), prot, &old); err != nil {
		return os.NewSyscallError("VirtualProtect", err)
	}
	return nil
}

// Windows has no madvise equivalent worth the PrefetchVirtualMemory setup.
func osAdvise(_ []byte, _ AccessPattern) error {
	return nil
}
