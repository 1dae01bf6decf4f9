// ABOUTME: Single-shot inactivity timer that is rearmed on every qualifying activity
// ABOUTME: Fires its callback once when the full timeout passes without activity

package session

import (
	"sync"
	"time"
)

// IdleTimer calls onExpire after timeout elapses with no Reset. It is armed
// on creation. Reset cancels the pending callback and arms a new one; Stop
// cancels it for good.
type IdleTimer struct {
	mu       sync.Mutex
	clock    Clock
	timeout  time.Duration
	onExpire func()
	timer    Timer
	gen      uint64 // incremented on every arm; stale callbacks compare against it
	stopped  bool
}

// NewIdleTimer creates and arms a timer.
func NewIdleTimer(clock Clock, timeout time.Duration, onExpire func()) *IdleTimer {
	t := &IdleTimer{clock: clock, timeout: timeout, onExpire: onExpire}
	t.mu.Lock()
	t.armLocked()
	t.mu.Unlock()
	return t
}

// Reset records activity. It has no effect after Stop or after expiry.
func (t *IdleTimer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	t.armLocked()
}

// Stop cancels the timer. Safe to call more than once.
func (t *IdleTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *IdleTimer) armLocked() {
	t.gen++
	gen := t.gen
	t.timer = t.clock.AfterFunc(t.timeout, func() { t.fire(gen) })
}

func (t *IdleTimer) fire(gen uint64) {
	t.mu.Lock()
	if t.stopped || gen != t.gen {
		// Superseded by a Reset that raced with this callback.
		t.mu.Unlock()
		return
	}
	t.stopped = true
	t.timer = nil
	t.mu.Unlock()

	t.onExpire()
}
