package voice

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
)

// Control is the live handle a streaming loop consults between frames.
type Control struct {
	mu     sync.Mutex
	paused bool
	wake   chan struct{}
	gain   atomic.Uint64
}

func NewControl(paused bool, gain float64) *Control {
	c := &Control{paused: paused, wake: make(chan struct{})}
	c.SetGain(gain)
	return c
}

// Hold blocks while paused. It reports false when ctx ends first.
func (c *Control) Hold(ctx context.Context) bool {
	for {
		c.mu.Lock()
		if !c.paused {
			c.mu.Unlock()
			return ctx.Err() == nil
		}
		wake := c.wake
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return false
		case <-wake:
		}
	}
}

func (c *Control) SetPaused(paused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.paused == paused {
		return
	}
	c.paused = paused
	if !paused {
		close(c.wake)
		c.wake = make(chan struct{})
	}
}

func (c *Control) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

func (c *Control) Gain() float64 {
	return math.Float64frombits(c.gain.Load())
}

func (c *Control) SetGain(v float64) {
	c.gain.Store(math.Float64bits(v))
}
