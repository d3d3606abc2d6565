// Package fmmap provides memory-mapped files behind one API that does not
// care whether the bytes live in a mapped file or in an owned buffer.
//
// # Quick Start
//
// Create a file, write through the mapping and make it durable:
//
//	f, _ := fmmap.DefaultOptions().MaxSize(8 << 10).CreateMut("data.bin")
//	_ = f.WriteAll([]byte("Hello, sync file!"), 0)
//	_ = f.WriteInt8(-8, 100)
//	_ = f.Flush()
//	_ = f.Close()
//
// Read it back:
//
//	r, _ := fmmap.Open("data.bin")
//	v, _ := r.ReadInt8(100) // -8
//	_ = r.Close()
//
// # Backends
//
// Every facade holds exactly one backend:
//
//   - Disk: a mapped file. Reads and writes go straight to the page cache;
//     Flush writes dirty pages back.
//   - Memory: an owned byte slice. Flushes succeed trivially and the backing
//     "file" cannot be removed.
//   - Empty: what remains after a consuming call (Remove, Freeze,
//     CloseWithTruncate, Close) or a failed remap. Data calls fail with
//     ErrEmptyMmap; everything else is a no-op.
//
// # Facades
//
// MmapFile is read-only. MmapFileMut adds writes, flushes and the lifecycle
// calls:
//
//	Truncate(ctx, n)           // resize file and mapping
//	Remove(ctx)                // unmap, truncate to 0, close, delete
//	CloseWithTruncate(ctx, n)  // flush, unmap, set length, sync parent dir
//	Freeze() / FreezeExec()    // turn into an MmapFile
//
// Options.RemoveOnDrop makes Close delete the file, which suits scratch files.
//
// Always Close a facade. One that is garbage collected first, with no Reader
// or Writer left on it, only closes its file handle (and unlinks the file if
// remove-on-drop is set). The mapping itself is kept, because slices from
// AsSlice may still point into it, and a warning is logged.
//
// # Resizing
//
// On Linux a resize changes the file length under the live mapping and then
// moves the mapping with mremap(2). Elsewhere the mapping is released first,
// the length changes, and a new mapping is made. If the new mapping cannot be
// made, the file is closed and the facade becomes empty.
//
// Slices returned by AsSlice, Slice and Bytes are invalid after any resize or
// consuming call. Readers and Writers detect this and return ErrStaleView.
//
// # Errors
//
// All failures are *Error values with a Kind. Use errors.Is with the
// sentinels (ErrUnexpectedEnd, ErrOutOfRange, ErrInvalidOperation,
// ErrEmptyMmap) or errors.As to inspect the kind, path and cause.
//
// # Observability
//
// Options.Logger takes a *Logger (log/slog), Options.Metrics a
// MetricsCollector; package prommetrics exports one for Prometheus.
// Options.Controller (package resource) bounds concurrent lifecycle calls,
// memory growth and the bandwidth of WriteAllToNewFile.
package fmmap
