// Package monitor renders a live terminal view of a running timer using
// tcell: target versus measured rate, tick and lost-frame counters, and the
// pause state. Space toggles pause/resume, q or ESC quits.
package monitor

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/fmoraes/go-cadence/cadence"
	"github.com/fmoraes/go-cadence/cadence/stats"
)

const redrawInterval = 250 * time.Millisecond

// Monitor owns a timer and a collector for the duration of Run.
type Monitor struct {
	timer     *cadence.Timer
	collector *stats.Collector
	targetFPS int

	paused   bool
	lastRate float64
}

// New creates a monitor for the given timer. The collector must be the
// timer's registered listener.
func New(t *cadence.Timer, c *stats.Collector, targetFPS int) *Monitor {
	return &Monitor{
		timer:     t,
		collector: c,
		targetFPS: targetFPS,
	}
}

// Run starts the timer and blocks until the user quits. The timer is
// destroyed before returning.
func (m *Monitor) Run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}
	defer screen.Fini()

	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				// Screen finalized, stop polling.
				return
			}
			events <- ev
		}
	}()

	m.timer.Create()
	m.timer.Resume()
	defer m.timer.Destroy()

	redraw := time.NewTicker(redrawInterval)
	defer redraw.Stop()

	m.draw(screen)
	for {
		select {
		case ev := <-events:
			switch tev := ev.(type) {
			case *tcell.EventKey:
				if tev.Key() == tcell.KeyEscape || tev.Rune() == 'q' {
					return nil
				}
				if tev.Rune() == ' ' {
					m.togglePause()
					m.draw(screen)
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-redraw.C:
			m.draw(screen)
		}
	}
}

func (m *Monitor) togglePause() {
	if m.paused {
		m.timer.Resume()
	} else {
		m.timer.Pause()
	}
	m.paused = !m.paused
}

func (m *Monitor) draw(screen tcell.Screen) {
	snap := m.collector.Snapshot()
	if snap.WindowTicks > 0 {
		m.lastRate = snap.Rate
	}

	state := "active"
	if m.paused {
		state = "paused"
	}

	screen.Clear()

	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	style := tcell.StyleDefault
	dimStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)

	drawText(screen, 1, 0, titleStyle, "cadence monitor")
	drawText(screen, 1, 2, style, fmt.Sprintf("target rate:    %d/s (cycle %.3f ms)",
		m.targetFPS, m.timer.CycleLength()/1e6))
	drawText(screen, 1, 3, style, fmt.Sprintf("measured rate:  %.2f/s", m.lastRate))
	drawText(screen, 1, 4, style, fmt.Sprintf("mean cycle:     %s", snap.MeanCycle))
	drawText(screen, 1, 5, style, fmt.Sprintf("max cycle:      %s", snap.MaxCycle))
	drawText(screen, 1, 7, style, fmt.Sprintf("ticks:          %d", snap.Ticks))
	drawText(screen, 1, 8, style, fmt.Sprintf("frames lost:    %d", snap.FramesLost))
	drawText(screen, 1, 9, style, fmt.Sprintf("samples dropped: %d", snap.Dropped))
	drawText(screen, 1, 11, style, fmt.Sprintf("state:          %s", state))
	drawText(screen, 1, 13, dimStyle, "SPACE pause/resume  Q/ESC quit")

	screen.Show()
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, ch := range text {
		screen.SetContent(x+i, y, ch, nil, style)
	}
}
