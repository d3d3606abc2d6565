package fmmap

import (
	"os"
	"syscall"
	"time"
)

func fillPlatform(md *MetaData, fi os.FileInfo) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}
	md.accessTime = time.Unix(int64(st.Atim.Sec), int64(st.Atim.Nsec))
	md.changeTime = time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec))
	md.stat = statInfo{
		dev:     uint64(st.Dev),
		ino:     uint64(st.Ino),
		nlink:   uint64(st.Nlink),
		uid:     st.Uid,
		gid:     st.Gid,
		rdev:    uint64(st.Rdev),
		blksize: int64(st.Blksize),
		blocks:  int64(st.Blocks),
	}
}
