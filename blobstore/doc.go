// Package blobstore moves whole mapped files in and out of blob storage.
//
// BlobStore is the interface for reading and writing named blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: a local directory; Open returns read-only mappings
//   - MemoryStore: process memory, for tests
//   - CompressedStore: LZ4 or Zstandard blocks on top of any store
//   - minio.Store and s3.Store: object storage with range reads
//
// # Loading and Saving
//
// Load turns a blob into an *fmmap.MmapFile. Blobs from a LocalStore are
// mapped directly; anything else is read into a memory backend:
//
//	f, err := blobstore.Load(ctx, store, "index.bin")
//	defer f.Close()
//
// Save writes the contents of a facade back:
//
//	err := blobstore.Save(ctx, store, "index.bin", f)
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Create(ctx, name) (WritableBlob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Blobs that can expose their bytes without a copy should implement Mappable.
package blobstore
