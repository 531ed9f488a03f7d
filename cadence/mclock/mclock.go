// Package mclock wraps a monotonic clock source behind a small interface so
// that timing code can be driven by a simulated clock in tests.
package mclock

import (
	"time"

	"github.com/aristanetworks/goarista/monotime"
)

// AbsTime is a monotonic clock reading in nanoseconds. Readings are only
// meaningful relative to each other.
type AbsTime time.Duration

// Add returns t + d.
func (t AbsTime) Add(d time.Duration) AbsTime {
	return t + AbsTime(d)
}

// Sub returns t - t2 as a duration.
func (t AbsTime) Sub(t2 AbsTime) time.Duration {
	return time.Duration(t - t2)
}

// Clock is the interface the timer loop uses to read time and to sleep.
type Clock interface {
	Now() AbsTime
	Sleep(d time.Duration)
}

// System implements Clock with the real monotonic clock.
type System struct{}

func (System) Now() AbsTime {
	return AbsTime(monotime.Now())
}

func (System) Sleep(d time.Duration) {
	time.Sleep(d)
}
