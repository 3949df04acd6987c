package clock

import (
	"sync"
	"time"
)

// Clock lets components read the current time without calling time.Now
// directly, so tests can pin it.
type Clock interface {
	Now() time.Time
}

type system struct{}

func New() Clock { return system{} }

func (system) Now() time.Time { return time.Now() }

// Managed is a hand-driven clock for tests. Time only moves forward.
type Managed struct {
	mu  sync.Mutex
	now time.Time
}

func NewManaged(start time.Time) *Managed {
	return &Managed{now: start}
}

func (c *Managed) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time.
func (c *Managed) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.now = c.now.Add(d)
	}
	return c.now
}
