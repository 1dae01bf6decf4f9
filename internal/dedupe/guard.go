// ABOUTME: Thread-safe TTL guard that lets exactly one caller claim a key.
// ABOUTME: Used to call one-shot backend endpoints (email verification) at most once per token.

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

// claim stores when a key was claimed and its position in insertion order.
type claim struct {
	at      time.Time
	element *list.Element
}

// Guard records claimed keys for a TTL, bounded in size. When full, the
// oldest claim is evicted.
type Guard struct {
	mu      sync.Mutex
	claims  map[string]*claim
	order   *list.List // keys in claim order (oldest at front)
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	done    chan struct{}
	closed  bool
}

// Option configures a Guard.
type Option func(*Guard)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

// New creates a guard. A background goroutine sweeps expired claims until
// Close is called.
func New(ttl time.Duration, maxSize int, opts ...Option) *Guard {
	g := &Guard{
		claims:  make(map[string]*claim),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	go g.sweepLoop()
	return g
}

// Claim returns true if the caller is the first to claim key within the
// TTL, and records the claim. Later callers get false until it expires.
// Check and record happen under one lock.
func (g *Guard) Claim(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if c, ok := g.claims[key]; ok {
		if now.Sub(c.at) < g.ttl {
			return false
		}
		g.order.Remove(c.element)
		delete(g.claims, key)
	}

	if len(g.claims) >= g.maxSize {
		g.evictOldest()
	}
	g.claims[key] = &claim{at: now, element: g.order.PushBack(key)}
	return true
}

// Len returns the number of stored claims, expired or not.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.claims)
}

// evictOldest must be called with mu held.
func (g *Guard) evictOldest() {
	front := g.order.Front()
	if front == nil {
		return
	}
	key, _ := front.Value.(string)
	g.order.Remove(front)
	delete(g.claims, key)
}

func (g *Guard) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.sweep()
		case <-g.done:
			return
		}
	}
}

// sweep removes expired claims. Claims are ordered by time, so it stops at
// the first live one.
func (g *Guard) sweep() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for e := g.order.Front(); e != nil; {
		key, _ := e.Value.(string)
		c := g.claims[key]
		if c != nil && now.Sub(c.at) < g.ttl {
			return
		}
		next := e.Next()
		g.order.Remove(e)
		delete(g.claims, key)
		e = next
	}
}

// Close stops the background sweep. It is safe to call multiple times.
func (g *Guard) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.closed {
		close(g.done)
		g.closed = true
	}
}
