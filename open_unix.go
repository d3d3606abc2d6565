//go:build !windows

package fmmap

import (
	"github.com/hupe1980/fmmap/internal/fs"
)

func openFile(fsys fs.FileSystem, path string, flag int, o Options) (fs.File, error) {
	return fsys.OpenFile(path, flag, o.mode)
}
