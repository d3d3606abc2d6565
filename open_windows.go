//go:build windows

package fmmap

import (
	"os"

	"golang.org/x/sys/windows"

	"github.com/hupe1980/fmmap/internal/fs"
)

// openFile goes through CreateFile directly when any Windows-specific option
// is set; os.OpenFile exposes none of them.
func openFile(fsys fs.FileSystem, path string, flag int, o Options) (fs.File, error) {
	if o.win.isZero() {
		return fsys.OpenFile(path, flag, o.mode)
	}

	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}

	access := o.win.accessMode
	if access == 0 {
		access = windows.GENERIC_READ
		if flag&(os.O_RDWR|os.O_WRONLY) != 0 {
			access |= windows.GENERIC_WRITE
		}
	}

	share := o.win.shareMode
	if share == 0 {
		share = windows.FILE_SHARE_READ | windows.FILE_SHARE_WRITE | windows.FILE_SHARE_DELETE
	}

	var disposition uint32
	switch {
	case flag&(os.O_CREATE|os.O_EXCL) == os.O_CREATE|os.O_EXCL:
		disposition = windows.CREATE_NEW
	case flag&(os.O_CREATE|os.O_TRUNC) == os.O_CREATE|os.O_TRUNC:
		disposition = windows.CREATE_ALWAYS
	case flag&os.O_CREATE != 0:
		disposition = windows.OPEN_ALWAYS
	case flag&os.O_TRUNC != 0:
		disposition = windows.TRUNCATE_EXISTING
	default:
		disposition = windows.OPEN_EXISTING
	}

	attrs := o.win.attributes | o.win.customFlags
	if attrs == 0 {
		attrs = windows.FILE_ATTRIBUTE_NORMAL
	}
	if o.win.securityQoSFlags != 0 {
		attrs |= o.win.securityQoSFlags | windows.SECURITY_SQOS_PRESENT
	}

	h, err := windows.CreateFile(name, access, share, nil, disposition, attrs, 0)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return os.NewFile(uintptr(h), path), nil
}
