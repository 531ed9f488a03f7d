// Package cadence implements a periodic event generator: a timer that fires
// a tick callback at a fixed rate, compensating for scheduling jitter so the
// long-run tick rate matches the nominal rate. Sub-cycle delays are folded
// into the next cycle; overruns of a full cycle or more are reported as lost
// frames instead of being silently absorbed.
package cadence

import (
	"math"
	"sync"
	"time"

	"github.com/fmoraes/go-cadence/cadence/mclock"
)

const (
	nanosPerMilli  = 1e6
	nanosPerSecond = 1e9
)

type lifecycle int

const (
	lifecycleIdle lifecycle = iota
	lifecycleRunning
	lifecycleTerminated
)

// loopState is the cooperative pause protocol between the control side and
// the loop goroutine. Terminating is only ever observed while leaving the
// paused wait: Destroy drains to paused first, so the combination of an
// active loop and a pending termination cannot be represented.
type loopState int

const (
	stateActive loopState = iota
	statePauseRequested
	statePaused
	stateTerminating
)

// Timer drives a dedicated goroutine that fires a tick at a fixed cadence.
//
// Control operations are synchronous: each blocks its caller until the loop
// has acknowledged the requested state. They may be called from any
// goroutine; concurrent control calls are serialized internally.
type Timer struct {
	cycle float64 // nanoseconds per tick, immutable
	clock mclock.Clock

	ctl sync.Mutex // serializes control operations, like the outer lock in pause/resume

	mu              sync.Mutex
	cond            *sync.Cond
	lifecycle       lifecycle
	state           loopState
	resumeRequested bool
	done            chan struct{}

	events   sync.Mutex // guards listener and is held while callbacks run
	listener Listener
}

// New returns a Timer that fires fps ticks per second on the system
// monotonic clock. Panics if fps is not positive.
func New(fps int) *Timer {
	return NewWithClock(fps, mclock.System{})
}

// NewWithClock is like New but reads time and sleeps through the given
// clock. Tests use this with mclock.Simulated.
func NewWithClock(fps int, clock mclock.Clock) *Timer {
	if fps <= 0 {
		panic("cadence: fps must be positive")
	}
	t := &Timer{
		cycle: nanosPerSecond / float64(fps),
		clock: clock,
	}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// CycleLength returns the nanoseconds per cycle, fixed at construction.
func (t *Timer) CycleLength() float64 {
	return t.cycle
}

// SetListener replaces the registered listener. A nil listener drops ticks
// silently. The replacement takes effect on the next tick; it must not be
// called while the timer is actively ticking (pause first, or set it before
// Create).
func (t *Timer) SetListener(l Listener) {
	t.ctl.Lock()
	defer t.ctl.Unlock()
	t.events.Lock()
	defer t.events.Unlock()
	t.listener = l
}

// Create spawns the timer goroutine, which immediately parks itself: the
// first tick fires only after Resume. Create returns once the goroutine has
// been launched, without waiting for it to reach the parked state. No-op if
// the timer is already running. A destroyed Timer may be created again.
func (t *Timer) Create() {
	t.ctl.Lock()
	defer t.ctl.Unlock()

	t.mu.Lock()
	if t.lifecycle == lifecycleRunning {
		t.mu.Unlock()
		return
	}
	t.lifecycle = lifecycleRunning
	t.state = statePauseRequested
	t.resumeRequested = false
	t.done = make(chan struct{})
	t.mu.Unlock()

	go t.run()
}

// Pause requests a pause and blocks until the loop acknowledges it. Returns
// immediately if already paused. No-op if the timer is not running.
func (t *Timer) Pause() {
	t.ctl.Lock()
	defer t.ctl.Unlock()
	t.doPause()
}

// Resume wakes a paused loop and blocks until ticking has resumed. If the
// initial pause requested by Create has not been acknowledged yet, Resume
// first waits for the loop to park so there is a well-defined state to
// resume from. No-op if already active or not running.
func (t *Timer) Resume() {
	t.ctl.Lock()
	defer t.ctl.Unlock()
	t.doResume()
}

// Destroy stops the timer: it drains any in-flight cycle by pausing, wakes
// the loop so it can observe termination, and waits for the goroutine to
// exit before returning. No-op if the timer is not running. The Timer can be
// created again afterwards with no state carried over.
func (t *Timer) Destroy() {
	t.ctl.Lock()
	defer t.ctl.Unlock()

	t.mu.Lock()
	if t.lifecycle != lifecycleRunning {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	t.doPause()

	t.mu.Lock()
	t.state = stateTerminating
	t.resumeRequested = true
	t.cond.Broadcast()
	t.mu.Unlock()

	<-t.done

	t.mu.Lock()
	t.lifecycle = lifecycleTerminated
	t.state = stateActive
	t.resumeRequested = false
	t.mu.Unlock()
}

func (t *Timer) doPause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lifecycle != lifecycleRunning || t.state == statePaused {
		return
	}
	t.state = statePauseRequested
	for t.state != statePaused {
		t.cond.Wait()
	}
}

func (t *Timer) doResume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lifecycle != lifecycleRunning {
		return
	}
	if t.state == statePauseRequested {
		// Create parks the loop asynchronously; wait for the park to land.
		for t.state != statePaused {
			t.cond.Wait()
		}
	}
	if t.state == statePaused {
		t.resumeRequested = true
		t.cond.Broadcast()
		for t.state == statePaused {
			t.cond.Wait()
		}
	}
}

// run is the timer goroutine. Each pass checks for a pause request, measures
// elapsed time against the cycle length, and either fires or sleeps out the
// remainder of the cycle.
func (t *Timer) run() {
	defer close(t.done)

	lastTick := t.clock.Now()
	carried := 0.0

	for {
		if !t.checkpoint(&lastTick) {
			return
		}

		now := t.clock.Now()
		elapsed := float64(now.Sub(lastTick)) + carried

		if elapsed >= t.cycle {
			carried = t.emit(elapsed, carried)
			lastTick = now
		} else {
			// Truncating to whole milliseconds wakes the loop slightly
			// early, never late; the shortfall is absorbed as ordinary
			// drift on the next pass instead of compounding.
			ms := time.Duration((t.cycle - elapsed) / nanosPerMilli)
			t.clock.Sleep(ms * time.Millisecond)
		}
	}
}

// checkpoint handles a pending pause request. It parks the loop, waits for a
// resume, and shifts lastTick forward by the paused duration so paused time
// never counts as elapsed processing time. Returns false when the loop must
// exit.
func (t *Timer) checkpoint(lastTick *mclock.AbsTime) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != statePauseRequested {
		return t.state != stateTerminating
	}

	pausedAt := t.clock.Now()
	t.state = statePaused
	t.cond.Broadcast()

	for !t.resumeRequested {
		t.cond.Wait()
	}
	t.resumeRequested = false

	if t.state == stateTerminating {
		return false
	}

	t.state = stateActive
	t.cond.Broadcast()

	*lastTick = lastTick.Add(t.clock.Now().Sub(pausedAt))
	return true
}

// emit fires the tick and, on a multi-cycle overrun, the lost-frames event.
// It receives the measured elapsed time (carried delay included) and returns
// the delay to carry into the next pass, always reduced below one cycle.
func (t *Timer) emit(elapsed, carried float64) float64 {
	t.events.Lock()
	defer t.events.Unlock()

	if t.listener != nil {
		t.listener.OnTick(elapsed - carried)
	}

	next := elapsed - t.cycle
	if next >= t.cycle {
		if t.listener != nil {
			t.listener.OnFramesLost(int(math.Floor(next / t.cycle)))
		}
		next = math.Mod(next, t.cycle)
	}
	return next
}
