// Package fs is the file collaborator of the mapping layer: it opens,
// stats, truncates and removes the files behind Disk-backed mappings.
//
// The package defines two key interfaces:
//
//   - [File]: an open file with sync, truncate and descriptor access
//   - [FileSystem]: open, remove, stat and directory operations
//
// # Implementations
//
//   - [LocalFS]: Production implementation using the os package
//   - [FaultyFS]: Test utility that injects open, truncate, sync, close and remove failures
//
// # Usage
//
//	file, err := fs.Default.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
//
// Tests inject [FaultyFS] to drive error paths of the resize protocol:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("data.bin", fs.Fault{FailOnTruncate: true})
//
// # Design Notes
//
// This package intentionally does NOT take context.Context parameters.
// The calls are non-interruptible at the syscall level; waiting for a slot
// to run them is bounded by the caller (see package resource).
package fs
