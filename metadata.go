package fmmap

import (
	"os"
	"time"
)

// MetaData describes the storage behind a facade.
//
// Disk metadata mirrors the backing file's stat; memory metadata reports the
// buffer length and its creation time for every timestamp; empty metadata
// is zero-length with all timestamps at the Unix epoch.
type MetaData struct {
	backend    Backend
	path       string
	size       int64
	mode       os.FileMode
	modTime    time.Time
	accessTime time.Time
	changeTime time.Time
	createTime time.Time
	stat       statInfo
}

// statInfo holds the platform stat fields that have a Unix equivalent.
type statInfo struct {
	dev     uint64
	ino     uint64
	nlink   uint64
	uid     uint32
	gid     uint32
	rdev    uint64
	blksize int64
	blocks  int64
}

func diskMetaData(path string, fi os.FileInfo) MetaData {
	md := MetaData{
		backend: BackendDisk,
		path:    path,
		size:    fi.Size(),
		mode:    fi.Mode(),
		modTime: fi.ModTime(),
	}
	fillPlatform(&md, fi)
	return md
}

// Backend reports which storage the metadata was taken from.
func (m MetaData) Backend() Backend { return m.backend }

// Path returns the backing path, or the label of a memory mapping.
func (m MetaData) Path() string { return m.path }

// Len returns the file length, which may differ from the mapped length.
func (m MetaData) Len() int64 { return m.size }

// Mode returns the file mode bits. Zero for memory and empty backends.
func (m MetaData) Mode() os.FileMode { return m.mode }

// IsFile reports whether the metadata describes a regular file.
func (m MetaData) IsFile() bool { return m.backend == BackendDisk && m.mode.IsRegular() }

func (m MetaData) ModTime() time.Time    { return m.modTime }
func (m MetaData) AccessTime() time.Time { return m.accessTime }
func (m MetaData) ChangeTime() time.Time { return m.changeTime }

// CreateTime returns the creation time where the platform records one and the
// zero time otherwise.
func (m MetaData) CreateTime() time.Time { return m.createTime }

func (m MetaData) Dev() uint64    { return m.stat.dev }
func (m MetaData) Ino() uint64    { return m.stat.ino }
func (m MetaData) Nlink() uint64  { return m.stat.nlink }
func (m MetaData) UID() uint32    { return m.stat.uid }
func (m MetaData) GID() uint32    { return m.stat.gid }
func (m MetaData) Rdev() uint64   { return m.stat.rdev }
func (m MetaData) BlkSize() int64 { return m.stat.blksize }
func (m MetaData) Blocks() int64  { return m.stat.blocks }
