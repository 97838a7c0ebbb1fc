package pipeline

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cosmic-utils/camera-sub001/internal/logging"
)

// LoopController manages the lifecycle of one frame-delivery goroutine:
// start, observe whether it is running, request a cooperative stop, and
// join its exit. It is the Go-idiomatic counterpart of a
// start/stop/join thread-lifecycle controller, using context
// cancellation in place of a raw stop flag plus join handle.
type LoopController struct {
	mu      sync.Mutex
	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewLoopController returns an idle controller.
func NewLoopController() *LoopController {
	return &LoopController{}
}

// Start launches run in a new goroutine with a context derived from
// parent. If a loop is already running, Start is a no-op and returns
// false. The context passed to run is cancelled when Stop or RequestStop
// is called or parent is cancelled; nothing cancels it when the
// controller is dropped without being stopped (there is no finalizer).
func (c *LoopController) Start(parent context.Context, run func(ctx context.Context)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running.Load() {
		return false
	}

	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.running.Store(true)

	done := c.done
	go func() {
		defer close(done)
		defer c.running.Store(false)
		run(ctx)
	}()
	return true
}

// IsRunning reports whether a loop is currently active.
func (c *LoopController) IsRunning() bool {
	return c.running.Load()
}

// RequestStop cancels the running loop's context without waiting for it
// to exit. Safe to call when no loop is running.
func (c *LoopController) RequestStop() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Stop requests cancellation and blocks until the loop has exited. Safe
// to call when no loop is running (returns immediately).
func (c *LoopController) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	if done != nil {
		<-done
	}
}

// Join blocks until the current loop exits, without requesting
// cancellation. Returns immediately if no loop was ever started.
func (c *LoopController) Join() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

// StopAndLog calls Stop and emits a debug log line; convenience for
// shutdown paths where the caller doesn't otherwise touch logging.
func (c *LoopController) StopAndLog(component string) {
	if !c.IsRunning() {
		return
	}
	logging.For(component).Debug("stopping loop controller")
	c.Stop()
}
