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
	md.accessTime = time.Unix(st.Atimespec.Sec, st.Atimespec.Nsec)
	md.changeTime = time.Unix(st.Ctimespec.Sec, st.Ctimespec.Nsec)
	md.createTime = time.Unix(st.Birthtimespec.Sec, st.Birthtimespec.Nsec)
	md.stat = statInfo{
		dev:     uint64(st.Dev),
		ino:     st.Ino,
		nlink:   uint64(st.Nlink),
		uid:     st.Uid,
		gid:     st.Gid,
		rdev:    uint64(st.Rdev),
		blksize: int64(st.Blksize),
		blocks:  st.Blocks,
	}
}
