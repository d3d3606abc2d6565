//go:build !linux && !darwin && !windows

package fmmap

import "os"

func fillPlatform(md *MetaData, _ os.FileInfo) {
	md.accessTime = md.modTime
	md.changeTime = md.modTime
}
