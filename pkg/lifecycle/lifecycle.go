// Package lifecycle runs startup and shutdown hooks for the server's
// long-lived subsystems and aggregates their readiness for /readyz.
package lifecycle

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"
)

// Coordinator collects hooks and named readiness checks. Startup hooks run
// as soon as they are registered; shutdown hooks must block on
// Context().Done() before releasing resources.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc

	startup  sync.WaitGroup
	shutdown sync.WaitGroup

	mu      sync.RWMutex
	started bool
	checks  map[string]func() bool
}

func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{ctx: ctx, cancel: cancel, checks: map[string]func() bool{}}
}

// Context is cancelled when Shutdown begins.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

func (c *Coordinator) OnStartup(fn func()) {
	c.startup.Go(fn)
}

func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdown.Go(fn)
}

// AddReadiness registers check under name. A later registration with the
// same name replaces the earlier one.
func (c *Coordinator) AddReadiness(name string, check func() bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// WaitForStartup blocks until every startup hook has returned.
func (c *Coordinator) WaitForStartup() {
	c.startup.Wait()
	c.mu.Lock()
	c.started = true
	c.mu.Unlock()
}

// Ready reports whether startup has finished and every check passes.
func (c *Coordinator) Ready() bool {
	ready, _ := c.Status()
	return ready
}

// Status returns overall readiness and the result of each named check.
// Before startup completes overall readiness is false regardless of checks.
func (c *Coordinator) Status() (bool, map[string]bool) {
	c.mu.RLock()
	checks := maps.Clone(c.checks)
	ready := c.started
	c.mu.RUnlock()

	results := make(map[string]bool, len(checks))
	for name, check := range checks {
		ok := check()
		results[name] = ok
		ready = ready && ok
	}
	return ready, results
}

// Shutdown cancels Context and waits up to timeout for the shutdown hooks.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdown.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown hooks still running after %v", timeout)
	}
}
