// ABOUTME: In-memory fan-out of notices to every subscribed presenter
// ABOUTME: Lets a CLI, a UI shell and log sinks all observe the same failure reports

package notice

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const (
	// subscriberBufferSize is the channel buffer for each subscriber.
	subscriberBufferSize = 16
)

// Broadcaster is a Notifier that publishes every notice to all current
// subscribers. Publishing never blocks: a subscriber whose buffer is full
// misses the notice.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]chan Notice // subID -> ch
	closed      bool
	logger      *slog.Logger
}

// NewBroadcaster creates a broadcaster. Pass nil logger for default.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		subscribers: make(map[string]chan Notice),
		logger:      logger.With("component", "notices"),
	}
}

// Subscribe registers a subscriber and returns its channel and ID. The
// subscription is removed when ctx is cancelled.
func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan Notice, string) {
	subID := uuid.New().String()
	ch := make(chan Notice, subscriberBufferSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, subID
	}
	b.subscribers[subID] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.Unsubscribe(subID)
	}()

	return ch, subID
}

// Notify publishes n to every subscriber.
func (b *Broadcaster) Notify(n Notice) {
	b.logger.Debug("notice",
		"kind", string(n.Kind),
		"method", n.Method,
		"endpoint", n.Endpoint,
		"status", n.Status,
		"detail", n.Detail)

	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- n:
		default:
			b.logger.Debug("dropped notice for slow subscriber", "sub_id", id)
		}
	}
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subscribers[subID]
	if !ok {
		return
	}
	delete(b.subscribers, subID)
	close(ch)
}

// Close closes all subscriber channels. Later Notify calls are dropped.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
	b.closed = true
}
