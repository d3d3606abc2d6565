package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes caps the bytes held by memory-backed mappings.
	// If 0, usage is only tracked.
	MemoryLimitBytes int64

	// MaxBlockingOps is the number of resize, remove and close-with-truncate
	// calls that may run at once. If 0, defaults to 1.
	MaxBlockingOps int64

	// IOLimitBytesPerSec throttles bulk copies into new files.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller governs process-wide resources shared by many mappings.
// A nil *Controller imposes no limits.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	opSem *semaphore.Weighted

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxBlockingOps <= 0 {
		cfg.MaxBlockingOps = 1
	}

	c := &Controller{
		cfg:   cfg,
		opSem: semaphore.NewWeighted(cfg.MaxBlockingOps),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// Config returns the effective limits.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireMemory reserves bytes of the memory budget, blocking until they
// are available or ctx is done.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}
	if c.memSem != nil {
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}
	c.memUsed.Add(bytes)
	return nil
}

// TryAcquireMemory reserves bytes without blocking.
// Returns false if the limit would be exceeded.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}
	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return false
	}
	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory returns bytes to the memory budget.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the bytes currently reserved.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireOp reserves a slot for a blocking lifecycle call.
// Blocks while all slots are busy.
func (c *Controller) AcquireOp(ctx context.Context) error {
	if c == nil {
		return ctx.Err()
	}
	return c.opSem.Acquire(ctx, 1)
}

// TryAcquireOp reserves a slot without blocking.
func (c *Controller) TryAcquireOp() bool {
	if c == nil {
		return true
	}
	return c.opSem.TryAcquire(1)
}

// ReleaseOp releases a slot taken by AcquireOp or TryAcquireOp.
func (c *Controller) ReleaseOp() {
	if c == nil {
		return
	}
	c.opSem.Release(1)
}

// Concurrency returns how many blocking calls may run at once.
// An unlimited controller reports 0.
func (c *Controller) Concurrency() int {
	if c == nil {
		return 0
	}
	return int(c.cfg.MaxBlockingOps)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	// WaitN rejects requests larger than the burst; split them.
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
