package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotSummarizesWindow(t *testing.T) {
	c, err := NewCollector(DefaultCapacity)
	require.NoError(t, err)

	cycle := float64(20 * time.Millisecond)
	c.OnTick(cycle)
	c.OnTick(cycle)
	c.OnTick(2 * cycle)
	c.OnFramesLost(3)

	snap := c.Snapshot()
	assert.Equal(t, uint64(3), snap.Ticks)
	assert.Equal(t, uint64(3), snap.FramesLost)
	assert.Equal(t, uint64(0), snap.Dropped)

	assert.Equal(t, 3, snap.WindowTicks)
	assert.Equal(t, 3, snap.WindowFramesLost)
	assert.Equal(t, 80*time.Millisecond, snap.WindowElapsed)
	assert.Equal(t, 40*time.Millisecond, snap.MaxCycle)
	assert.InDelta(t, 26.66, snap.MeanCycle.Seconds()*1000, 0.01)
	// Three ticks over 80ms of covered time.
	assert.InDelta(t, 37.5, snap.Rate, 0.01)
}

func TestSnapshotDrainsTheWindow(t *testing.T) {
	c, err := NewCollector(DefaultCapacity)
	require.NoError(t, err)

	c.OnTick(float64(10 * time.Millisecond))
	first := c.Snapshot()
	assert.Equal(t, 1, first.WindowTicks)

	// Counters are cumulative, the window starts over.
	second := c.Snapshot()
	assert.Equal(t, uint64(1), second.Ticks)
	assert.Equal(t, 0, second.WindowTicks)
	assert.Equal(t, float64(0), second.Rate)
	assert.Equal(t, time.Duration(0), second.WindowElapsed)
}

func TestFullRingDropsButStillCounts(t *testing.T) {
	c, err := NewCollector(4)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		c.OnTick(float64(10 * time.Millisecond))
	}

	snap := c.Snapshot()
	assert.Equal(t, uint64(100), snap.Ticks, "dropped samples still count ticks")
	assert.Greater(t, snap.Dropped, uint64(0))
	assert.Less(t, snap.WindowTicks, 100)
	assert.Equal(t, uint64(100), uint64(snap.WindowTicks)+snap.Dropped,
		"every tick is either sampled or counted as dropped")
}

func TestEmptySnapshot(t *testing.T) {
	c, err := NewCollector(DefaultCapacity)
	require.NoError(t, err)

	snap := c.Snapshot()
	assert.Zero(t, snap.Ticks)
	assert.Zero(t, snap.WindowTicks)
	assert.Zero(t, snap.Rate)
}
