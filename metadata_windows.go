package fmmap

import (
	"os"
	"syscall"
	"time"
)

func fillPlatform(md *MetaData, fi os.FileInfo) {
	attr, ok := fi.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return
	}
	md.accessTime = time.Unix(0, attr.LastAccessTime.Nanoseconds())
	md.createTime = time.Unix(0, attr.CreationTime.Nanoseconds())
	md.changeTime = md.modTime
}
