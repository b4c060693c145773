package smactrace

import (
	"sync"

	"github.com/agentstation/smactrace/pkg/reconcile"
)

// Hook function types for load events
type (
	// LoadedHook is called after a load succeeded
	LoadedHook func(res *reconcile.Result)

	// SkippedHook is called once per file a load skipped
	SkippedHook func(skip reconcile.Skip)
)

// Hooks registers event callbacks.
type Hooks interface {
	// OnLoaded registers a callback for successful loads
	OnLoaded(LoadedHook)

	// OnSkipped registers a callback for skipped files
	OnSkipped(SkippedHook)
}

// hooks manages event callbacks for loads
type hooks struct {
	mu        sync.RWMutex
	onLoaded  []LoadedHook
	onSkipped []SkippedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnLoaded registers a callback for successful loads
func (c *client) OnLoaded(fn LoadedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onLoaded = append(c.hooks.onLoaded, fn)
}

// OnSkipped registers a callback for skipped files
func (c *client) OnSkipped(fn SkippedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onSkipped = append(c.hooks.onSkipped, fn)
}

// triggerLoad runs the skip hooks for every skipped file, then the load
// hooks.
func (h *hooks) triggerLoad(res *reconcile.Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range res.Skips {
		for _, hook := range h.onSkipped {
			hook(s)
		}
	}
	for _, hook := range h.onLoaded {
		hook(res)
	}
}
