package testsupport

import (
	"sync"
	"time"
)

// Clock is a manually advanced clock for staleness tests.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// FixedClock returns a clock frozen at start.
func FixedClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
