package resource

import (
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrMemoryLimit is returned when a reservation would exceed the configured
// memory limit.
var ErrMemoryLimit = errors.New("memory limit exceeded")

// Config configures a Controller.
type Config struct {
	// MemoryLimitBytes is the hard limit for staging memory held at once.
	// Zero disables the limit; usage is still tracked.
	MemoryLimitBytes int64
}

// Controller tracks and bounds the memory of staged column buffers.
//
// A nil *Controller is valid and imposes no limit.
type Controller struct {
	cfg Config

	budget *semaphore.Weighted // nil when unlimited
	staged atomic.Int64
}

// NewController returns a Controller enforcing cfg.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}
	if cfg.MemoryLimitBytes > 0 {
		c.budget = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	return c
}

// Limit returns the configured limit, 0 if unlimited.
func (c *Controller) Limit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// TryAcquireMemory reserves bytes without blocking and reports whether the
// reservation fit the budget.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}
	if c.budget != nil && !c.budget.TryAcquire(bytes) {
		return false
	}
	c.staged.Add(bytes)
	return true
}

// Reserve is TryAcquireMemory returning ErrMemoryLimit on failure.
func (c *Controller) Reserve(bytes int64) error {
	if !c.TryAcquireMemory(bytes) {
		return c.limitError(bytes)
	}
	return nil
}

// ReleaseMemory returns bytes to the budget.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.budget != nil {
		c.budget.Release(bytes)
	}
	c.staged.Add(-bytes)
}

// MemoryUsage returns the bytes currently reserved.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.staged.Load()
}

func (c *Controller) limitError(bytes int64) error {
	return fmt.Errorf("%w: requested %d bytes, %d of %d in use",
		ErrMemoryLimit, bytes, c.MemoryUsage(), c.cfg.MemoryLimitBytes)
}
