// ABOUTME: Tests for the one-shot guard used by email verification.
// ABOUTME: Validates single claims, TTL expiry, eviction, sweeping and concurrency.

package dedupe

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newGuard(t *testing.T, ttl time.Duration, size int) (*Guard, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	g := New(ttl, size, WithClock(clock.Now))
	t.Cleanup(g.Close)
	return g, clock
}

func TestGuard_FirstClaimWins(t *testing.T) {
	g, _ := newGuard(t, time.Minute, 10)

	assert.True(t, g.Claim("token-a"))
	assert.False(t, g.Claim("token-a"))
	assert.False(t, g.Claim("token-a"))
	assert.True(t, g.Claim("token-b"), "keys are independent")
}

func TestGuard_ExpiredClaimCanBeRetaken(t *testing.T) {
	g, clock := newGuard(t, time.Minute, 10)

	assert.True(t, g.Claim("k"))
	clock.Advance(59 * time.Second)
	assert.False(t, g.Claim("k"))
	clock.Advance(time.Second)
	assert.True(t, g.Claim("k"))
	assert.Equal(t, 1, g.Len())
}

func TestGuard_EvictsOldestWhenFull(t *testing.T) {
	g, clock := newGuard(t, time.Hour, 2)

	g.Claim("a")
	clock.Advance(time.Second)
	g.Claim("b")
	clock.Advance(time.Second)
	g.Claim("c")

	assert.Equal(t, 2, g.Len())
	assert.False(t, g.Claim("b"))
	assert.False(t, g.Claim("c"))
	assert.True(t, g.Claim("a"), "oldest claim was evicted")
}

func TestGuard_Sweep(t *testing.T) {
	g, clock := newGuard(t, time.Minute, 10)

	g.Claim("old")
	clock.Advance(30 * time.Second)
	g.Claim("new")
	clock.Advance(45 * time.Second)

	g.sweep()
	assert.Equal(t, 1, g.Len())
	assert.False(t, g.Claim("new"))
}

func TestGuard_ConcurrentClaimsHaveOneWinner(t *testing.T) {
	g, _ := newGuard(t, time.Minute, 100)

	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.Claim("same-token") {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func TestGuard_CloseIsIdempotent(t *testing.T) {
	g := New(time.Minute, 10)
	g.Close()
	g.Close()
}
