// ABOUTME: In-memory fan-out of widget events to the pages watching a channel
// ABOUTME: A channel is a browser tab id; publishing never blocks on slow readers

package widget

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// subscriberBufferSize is the channel buffer for each subscriber.
const subscriberBufferSize = 16

// Broadcaster provides in-memory pub/sub for widget events. Pages subscribe
// to their own tab's channel and receive events relayed for that tab.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]chan Event // channelID -> subID -> ch
	closed      bool
	logger      *slog.Logger
}

// NewBroadcaster creates a broadcaster. Pass nil logger for default.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		subscribers: make(map[string]map[string]chan Event),
		logger:      logger.With("component", "widget"),
	}
}

// Subscribe registers a subscriber for channelID. The returned channel is
// closed on Unsubscribe, on Close, or when ctx is cancelled.
func (b *Broadcaster) Subscribe(ctx context.Context, channelID string) (<-chan Event, string) {
	subID := uuid.NewString()
	ch := make(chan Event, subscriberBufferSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, subID
	}
	if _, ok := b.subscribers[channelID]; !ok {
		b.subscribers[channelID] = make(map[string]chan Event)
	}
	b.subscribers[channelID][subID] = ch
	b.mu.Unlock()

	b.logger.Debug("subscriber added", "channel", channelID, "sub_id", subID)

	go func() {
		<-ctx.Done()
		b.Unsubscribe(channelID, subID)
	}()

	return ch, subID
}

// Publish delivers ev to every subscriber of channelID and returns how many
// received it. Subscribers whose buffers are full miss the event.
func (b *Broadcaster) Publish(channelID string, ev Event) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for _, ch := range b.subscribers[channelID] {
		select {
		case ch <- ev:
			delivered++
		default:
			b.logger.Debug("dropped event for slow subscriber", "channel", channelID, "type", ev.Type)
		}
	}
	return delivered
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(channelID, subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.subscribers[channelID]
	if !ok {
		return
	}
	ch, ok := subs[subID]
	if !ok {
		return
	}
	delete(subs, subID)
	close(ch)
	if len(subs) == 0 {
		delete(b.subscribers, channelID)
	}
}

// Subscribers returns the number of live subscriptions on channelID.
func (b *Broadcaster) Subscribers(channelID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[channelID])
}

// Close closes every subscriber channel. Later subscriptions receive an
// already-closed channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for channelID, subs := range b.subscribers {
		for subID, ch := range subs {
			close(ch)
			delete(subs, subID)
		}
		delete(b.subscribers, channelID)
	}
	b.closed = true
}
