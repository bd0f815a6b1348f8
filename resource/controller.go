package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when a reservation can never fit the
// limit, or when a non-blocking reservation does not fit right now.
var ErrMemoryLimitExceeded = errors.New("resource: memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes caps the bytes of decoded images held at once.
	// If 0, usage is only tracked.
	MemoryLimitBytes int64

	// MaxConcurrentOpens is the maximum number of images opened in parallel.
	// If 0, defaults to 1.
	MaxConcurrentOpens int64

	// IOLimitBytesPerSec throttles reads from remote stores.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages limits shared by every reader of a process.
//
// All methods are safe for concurrent use and are no-ops on a nil Controller.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	openSem *semaphore.Weighted

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentOpens <= 0 {
		cfg.MaxConcurrentOpens = 1
	}

	c := &Controller{
		cfg:     cfg,
		openSem: semaphore.NewWeighted(cfg.MaxConcurrentOpens),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// AcquireMemory reserves bytes, blocking until they fit under the limit.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}
	if c.memSem != nil {
		if bytes > c.cfg.MemoryLimitBytes {
			return ErrMemoryLimitExceeded
		}
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}
	c.memUsed.Add(bytes)
	return nil
}

// TryAcquireMemory reserves bytes without blocking.
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

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AcquireOpen reserves a slot for opening an image. Blocks if all slots are busy.
func (c *Controller) AcquireOpen(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.openSem.Acquire(ctx, 1)
}

// TryAcquireOpen reserves an open slot without blocking.
func (c *Controller) TryAcquireOpen() bool {
	if c == nil {
		return true
	}
	return c.openSem.TryAcquire(1)
}

// ReleaseOpen releases an open slot.
func (c *Controller) ReleaseOpen() {
	if c == nil {
		return
	}
	c.openSem.Release(1)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than one second of budget are split.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
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
