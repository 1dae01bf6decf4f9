// ABOUTME: Tests for IdleTimer using a manually advanced clock
// ABOUTME: Covers expiry, rearming on activity, stop, and single firing

package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestIdleTimer_FiresAfterTimeout(t *testing.T) {
	clock := NewManualClock(epoch)
	fired := 0
	NewIdleTimer(clock, time.Hour, func() { fired++ })

	clock.Advance(59 * time.Minute)
	assert.Equal(t, 0, fired)

	clock.Advance(time.Minute)
	assert.Equal(t, 1, fired)
}

func TestIdleTimer_ActivityJustBeforeDeadlineRearms(t *testing.T) {
	clock := NewManualClock(epoch)
	fired := 0
	timer := NewIdleTimer(clock, 2*time.Hour, func() { fired++ })

	clock.Advance(2*time.Hour - time.Second)
	timer.Reset()
	clock.Advance(time.Second)
	assert.Equal(t, 0, fired, "activity at T-1s must prevent expiry at T")

	clock.Advance(2*time.Hour - time.Second)
	assert.Equal(t, 1, fired)
}

func TestIdleTimer_FiresOnce(t *testing.T) {
	clock := NewManualClock(epoch)
	fired := 0
	timer := NewIdleTimer(clock, time.Minute, func() { fired++ })

	clock.Advance(time.Minute)
	timer.Reset()
	clock.Advance(10 * time.Minute)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, clock.Pending())
}

func TestIdleTimer_Stop(t *testing.T) {
	clock := NewManualClock(epoch)
	fired := 0
	timer := NewIdleTimer(clock, time.Minute, func() { fired++ })

	timer.Stop()
	timer.Stop()
	timer.Reset()
	clock.Advance(time.Hour)

	assert.Equal(t, 0, fired)
	assert.Equal(t, 0, clock.Pending())
}

func TestIdleTimer_RealClock(t *testing.T) {
	done := make(chan struct{})
	NewIdleTimer(RealClock(), 10*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
}
