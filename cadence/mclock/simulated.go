package mclock

import (
	"sync"
	"time"
)

// Simulated implements Clock with a manually advanced time value. Sleep
// blocks the caller until Advance has moved the clock past the sleep
// deadline, which makes loops built on Clock fully deterministic under test.
//
// The zero value is ready to use and starts at reading 0.
type Simulated struct {
	mu       sync.Mutex
	cond     *sync.Cond
	now      AbsTime
	sleepers map[*sleeper]struct{}
}

type sleeper struct {
	deadline AbsTime
}

func (c *Simulated) init() {
	if c.cond == nil {
		c.cond = sync.NewCond(&c.mu)
		c.sleepers = make(map[*sleeper]struct{})
	}
}

// Now returns the current simulated reading.
func (c *Simulated) Now() AbsTime {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep blocks until the simulated clock has advanced by at least d.
// Non-positive durations return immediately.
func (c *Simulated) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.init()

	if d <= 0 {
		return
	}

	s := &sleeper{deadline: c.now.Add(d)}
	c.sleepers[s] = struct{}{}
	c.cond.Broadcast()

	for c.now < s.deadline {
		c.cond.Wait()
	}
	delete(c.sleepers, s)
	c.cond.Broadcast()
}

// Advance moves the simulated clock forward by d, waking any sleeper whose
// deadline is reached.
func (c *Simulated) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.init()
	c.now = c.now.Add(d)
	c.cond.Broadcast()
}

// ActiveSleepers returns the number of goroutines blocked in Sleep whose
// deadline is still in the future.
func (c *Simulated) ActiveSleepers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.init()
	return c.active()
}

// WaitForSleepers blocks until at least n goroutines are sleeping with a
// deadline in the future. Tests use this to advance the clock only once the
// code under test has committed to a sleep.
func (c *Simulated) WaitForSleepers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.init()
	for c.active() < n {
		c.cond.Wait()
	}
}

func (c *Simulated) active() int {
	n := 0
	for s := range c.sleepers {
		if s.deadline > c.now {
			n++
		}
	}
	return n
}
