package cadence

// Listener receives the timer's outbound events. Both callbacks run
// synchronously on the timer's own goroutine, so a slow OnTick directly
// delays the next cycle and is what produces OnFramesLost events. Callbacks
// must not call Pause, Resume or Destroy on the same Timer; those block until
// the loop acknowledges, which is the goroutine running the callback.
type Listener interface {
	// OnTick fires once per completed cycle with the elapsed time since the
	// previous tick, in nanoseconds. Previously carried delay is excluded so
	// it is never reported twice.
	OnTick(elapsed float64)

	// OnFramesLost fires when a single pass overran by two or more full
	// cycle lengths, with the count of whole cycles skipped (always >= 1).
	OnFramesLost(frames int)
}

// ListenerFuncs adapts plain functions to the Listener interface. Nil
// members are skipped.
type ListenerFuncs struct {
	Tick       func(elapsed float64)
	FramesLost func(frames int)
}

var _ Listener = ListenerFuncs{}

func (l ListenerFuncs) OnTick(elapsed float64) {
	if l.Tick != nil {
		l.Tick(elapsed)
	}
}

func (l ListenerFuncs) OnFramesLost(frames int) {
	if l.FramesLost != nil {
		l.FramesLost(frames)
	}
}
