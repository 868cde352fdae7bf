// Package db implements the transaction and budget stores on badger, mongodb and sqlite
package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
	"golang.org/x/sync/singleflight"
)

// ErrConnectorClosed is returned by Get after Close
var ErrConnectorClosed = errors.New("connector closed")

// DialFunc opens a new store handle
type DialFunc[T any] func(ctx context.Context) (T, error)

// CloseFunc releases a store handle
type CloseFunc[T any] func(ctx context.Context, handle T) error

// Connector owns one lazily opened store handle. The first Get dials, callers
// arriving during that dial share its result, and later calls reuse the cached
// handle. A failed dial is not cached.
type Connector[T any] struct {
	name    string
	dial    DialFunc[T]
	close   CloseFunc[T]
	timeout time.Duration
	logger  logger.Logger

	group singleflight.Group

	mu     sync.RWMutex
	handle T
	ready  bool
	closed bool
}

// NewConnector creates a connector for the named backend
func NewConnector[T any](name string, dial DialFunc[T], closeFn CloseFunc[T], timeout time.Duration, log logger.Logger) *Connector[T] {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &Connector[T]{
		name:    name,
		dial:    dial,
		close:   closeFn,
		timeout: timeout,
		logger:  log.WithField("backend", name),
	}
}

// Get returns the store handle, dialing it on first use
func (c *Connector[T]) Get(ctx context.Context) (T, error) {
	if handle, ok, err := c.cached(); ok || err != nil {
		return handle, err
	}

	ch := c.group.DoChan(c.name, func() (interface{}, error) {
		if handle, ok, err := c.cached(); ok || err != nil {
			return handle, err
		}
		return c.connect(ctx)
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// cached reports the current handle. ok is true when the handle is ready.
func (c *Connector[T]) cached() (handle T, ok bool, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return handle, false, ErrConnectorClosed
	}
	return c.handle, c.ready, nil
}

// connect dials a new handle detached from the caller's cancellation, since
// other callers may be waiting on the same attempt
func (c *Connector[T]) connect(ctx context.Context) (T, error) {
	dialCtx := context.WithoutCancel(ctx)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(dialCtx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	c.logger.Info("Connecting to store", nil)

	handle, err := c.dial(dialCtx)
	if err != nil {
		c.logger.Error("Store connection failed", map[string]interface{}{
			"error":       err.Error(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		var zero T
		return zero, fmt.Errorf("connect to %s: %w", c.name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		if c.close != nil {
			_ = c.close(dialCtx, handle)
		}
		var zero T
		return zero, ErrConnectorClosed
	}

	c.handle = handle
	c.ready = true

	c.logger.Info("Store connected", map[string]interface{}{
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return handle, nil
}

// Close releases the handle if one was opened. Get fails after Close.
func (c *Connector[T]) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if !c.ready || c.close == nil {
		return nil
	}

	var zero T
	handle := c.handle
	c.handle = zero
	c.ready = false

	if err := c.close(ctx, handle); err != nil {
		return fmt.Errorf("close %s: %w", c.name, err)
	}

	c.logger.Info("Store connection closed", nil)
	return nil
}

// Ping ensures a handle can be obtained
func (c *Connector[T]) Ping(ctx context.Context) error {
	_, err := c.Get(ctx)
	return err
}
