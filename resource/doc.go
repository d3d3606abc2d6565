// Package resource governs process-wide limits shared by many mappings.
//
// A Controller manages three resources:
//
//   - Memory: bytes held by memory-backed mappings (weighted semaphore)
//   - Blocking ops: concurrent resize, remove and close-with-truncate calls
//   - IO: bytes per second copied into new files (token bucket)
//
// # Usage
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   1 << 30,
//	    MaxBlockingOps:     4,
//	    IOLimitBytesPerSec: 100 << 20,
//	})
//
//	if err := rc.AcquireOp(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseOp()
//
// # Nil Safety
//
// All methods handle a nil Controller; they become no-ops.
package resource
