package saber

import (
	"sync"
	"time"
)

// Clock supplies the time handed to each engine tick
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// ManualClock only moves when told to, the simulator uses it to single step
// and tests use it to drive pacing deterministically
type ManualClock struct {
	now time.Time
	sync.Mutex
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.Lock()
	defer c.Unlock()
	return c.now
}

// Advance moves the clock forward and returns the new time
func (c *ManualClock) Advance(d time.Duration) time.Time {
	c.Lock()
	defer c.Unlock()
	c.now = c.now.Add(d)
	return c.now
}
