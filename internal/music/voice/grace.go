package voice

import (
	"sync"
	"time"
)

// Grace is a one-shot disconnect watchdog. Start opens a window, Cancel
// closes it, and onExpire runs at most once over the watchdog's lifetime.
type Grace struct {
	mu       sync.Mutex
	window   time.Duration
	onExpire func()
	timer    *time.Timer
	seq      uint64
	pending  bool
	done     bool
}

func NewGrace(window time.Duration, onExpire func()) *Grace {
	return &Grace{window: window, onExpire: onExpire}
}

// Start opens a grace window. It reports false when a window is already
// running (which is left untouched) or the watchdog is done.
func (g *Grace) Start() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.done || g.pending {
		return false
	}
	g.seq++
	seq := g.seq
	g.pending = true
	g.timer = time.AfterFunc(g.window, func() { g.fire(seq) })
	return true
}

// Cancel closes a pending window and reports whether there was one.
func (g *Grace) Cancel() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.pending {
		return false
	}
	g.pending = false
	g.timer.Stop()
	return true
}

// Stop disables the watchdog for good without running onExpire.
func (g *Grace) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.done = true
	g.pending = false
	if g.timer != nil {
		g.timer.Stop()
	}
}

func (g *Grace) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending
}

func (g *Grace) fire(seq uint64) {
	g.mu.Lock()
	// a cancelled window whose timer already started must not fire
	if g.done || !g.pending || seq != g.seq {
		g.mu.Unlock()
		return
	}
	g.pending = false
	g.done = true
	g.mu.Unlock()

	g.onExpire()
}
