package mclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAbsTimeArithmetic(t *testing.T) {
	t0 := AbsTime(100)
	t1 := t0.Add(25 * time.Nanosecond)
	assert.Equal(t, AbsTime(125), t1)
	assert.Equal(t, 25*time.Nanosecond, t1.Sub(t0))
}

func TestSystemClockAdvances(t *testing.T) {
	clk := System{}
	t0 := clk.Now()
	clk.Sleep(time.Millisecond)
	assert.Greater(t, clk.Now(), t0, "monotonic clock must move forward across a sleep")
}

func TestSimulatedNowAndAdvance(t *testing.T) {
	clk := &Simulated{}
	assert.Equal(t, AbsTime(0), clk.Now())

	clk.Advance(time.Second)
	assert.Equal(t, AbsTime(time.Second), clk.Now())
}

func TestSimulatedSleepBlocksUntilAdvanced(t *testing.T) {
	clk := &Simulated{}
	woke := make(chan struct{})

	go func() {
		clk.Sleep(10 * time.Millisecond)
		close(woke)
	}()
	clk.WaitForSleepers(1)

	clk.Advance(5 * time.Millisecond)
	select {
	case <-woke:
		t.Fatal("sleeper woke before its deadline")
	case <-time.After(10 * time.Millisecond):
	}

	clk.Advance(5 * time.Millisecond)
	select {
	case <-woke:
	case <-time.After(5 * time.Second):
		t.Fatal("sleeper did not wake at its deadline")
	}
}

func TestSimulatedSleepZeroReturnsImmediately(t *testing.T) {
	clk := &Simulated{}
	clk.Sleep(0)
	clk.Sleep(-time.Second)
	assert.Equal(t, 0, clk.ActiveSleepers())
}

func TestWaitForSleepersIgnoresExpiredDeadlines(t *testing.T) {
	clk := &Simulated{}
	woke := make(chan struct{})

	go func() {
		clk.Sleep(time.Millisecond)
		close(woke)
	}()
	clk.WaitForSleepers(1)
	assert.Equal(t, 1, clk.ActiveSleepers())

	// Once the deadline is covered the sleeper no longer counts, even if
	// its goroutine has not been scheduled out of Sleep yet.
	clk.Advance(time.Millisecond)
	assert.Equal(t, 0, clk.ActiveSleepers())
	<-woke
}
