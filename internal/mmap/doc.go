// Package mmap is the OS mapping collaborator: it creates, resizes,
// re-protects, flushes and destroys file-backed mappings.
//
// # Usage
//
//	r, err := mmap.Map(f.Fd(), size, mmap.Config{Mode: mmap.ModeReadWrite})
//	if err != nil { ... }
//	defer r.Unmap()
//
//	copy(r.Bytes(), "hello")
//	_ = r.Flush(0, 5, false)
//
// The package never decides when to resize; callers sequence Unmap, file
// truncation and Map (or Remap where AtomicRemap is true) themselves.
//
// # Platform Support
//
//   - Linux: mmap(2), mremap(2) for in-place growth, MAP_POPULATE and MAP_STACK
//   - macOS, BSD: mmap(2); Remap maps the new range before releasing the old one
//   - Windows: CreateFileMapping/MapViewOfFile, VirtualProtect for freezing
//
// # Thread Safety
//
// A Region is not safe for concurrent Remap/Unmap and access. Callers hold
// their own lock across resize operations; Bytes must not be retained across them.
package mmap
