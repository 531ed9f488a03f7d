// Package stats collects tick and lost-frame samples from a running timer
// without blocking its loop. Samples cross from the timer goroutine to the
// reader through a lock-free ring; cumulative counters are atomic.
package stats

import (
	"fmt"
	"sync/atomic"
	"time"

	ring "github.com/randomizedcoder/go-lock-free-ring"

	"github.com/fmoraes/go-cadence/cadence"
)

// DefaultCapacity is enough ring headroom for several seconds of samples at
// common rates between snapshots.
const DefaultCapacity = 1024

type kind int

const (
	kindTick kind = iota
	kindFramesLost
)

type sample struct {
	kind  kind
	value float64 // elapsed nanoseconds for ticks, frame count for losses
}

// Collector implements cadence.Listener. The timer loop is the single
// producer; Snapshot is the single consumer and may run on any goroutine.
type Collector struct {
	samples *ring.ShardedRing

	ticks   atomic.Uint64
	lost    atomic.Uint64
	dropped atomic.Uint64
}

var _ cadence.Listener = (*Collector)(nil)

// NewCollector creates a collector with a sample ring of the given capacity.
func NewCollector(capacity int) (*Collector, error) {
	// One shard: the timer loop is the only producer.
	r, err := ring.NewShardedRing(uint64(capacity), 1)
	if err != nil {
		return nil, fmt.Errorf("creating sample ring: %v", err)
	}
	return &Collector{samples: r}, nil
}

// OnTick records a completed cycle. Runs on the timer goroutine; if the ring
// is full the sample is dropped but still counted.
func (c *Collector) OnTick(elapsed float64) {
	c.ticks.Add(1)
	if !c.samples.Write(0, sample{kind: kindTick, value: elapsed}) {
		c.dropped.Add(1)
	}
}

// OnFramesLost records an overrun.
func (c *Collector) OnFramesLost(frames int) {
	c.lost.Add(uint64(frames))
	if !c.samples.Write(0, sample{kind: kindFramesLost, value: float64(frames)}) {
		c.dropped.Add(1)
	}
}

// Snapshot summarizes activity. Window fields cover the samples accumulated
// since the previous Snapshot call; counter fields are cumulative.
type Snapshot struct {
	Ticks      uint64 // cumulative ticks fired
	FramesLost uint64 // cumulative frames lost
	Dropped    uint64 // cumulative samples dropped on a full ring

	WindowTicks      int           // ticks drained in this snapshot
	WindowFramesLost int           // frames lost in this snapshot
	WindowElapsed    time.Duration // wall time covered by the drained ticks
	Rate             float64       // measured ticks per second over the window
	MeanCycle        time.Duration
	MaxCycle         time.Duration
}

// Snapshot drains the sample ring and computes the window statistics.
func (c *Collector) Snapshot() Snapshot {
	s := Snapshot{
		Ticks:      c.ticks.Load(),
		FramesLost: c.lost.Load(),
		Dropped:    c.dropped.Load(),
	}

	var sum, max float64
	for {
		v, ok := c.samples.TryRead()
		if !ok {
			break
		}
		sm, ok := v.(sample)
		if !ok {
			continue
		}
		switch sm.kind {
		case kindTick:
			s.WindowTicks++
			sum += sm.value
			if sm.value > max {
				max = sm.value
			}
		case kindFramesLost:
			s.WindowFramesLost += int(sm.value)
		}
	}

	if s.WindowTicks > 0 {
		s.WindowElapsed = time.Duration(sum)
		s.MeanCycle = time.Duration(sum / float64(s.WindowTicks))
		s.MaxCycle = time.Duration(max)
		if sum > 0 {
			s.Rate = float64(s.WindowTicks) * float64(time.Second) / sum
		}
	}
	return s
}
