package notify

import (
	"context"
	"sync"

	"github.com/MayaraRocha95/todo-list-hp/domain"
)

const subscriberBuffer = 16

// Broker fans notifications out to in-process subscribers such as SSE
// streams. Slow subscribers miss notifications instead of blocking the Store.
type Broker struct {
	mu   sync.Mutex
	subs map[chan domain.Notification]struct{}
}

// NewBroker creates a Broker with no subscribers.
func NewBroker() *Broker {
	return &Broker{subs: make(map[chan domain.Notification]struct{})}
}

// Subscribe registers a new subscriber channel.
func (b *Broker) Subscribe() chan domain.Notification {
	ch := make(chan domain.Notification, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes ch. The channel is not closed so a concurrent Notify
// never sends on a closed channel.
func (b *Broker) Unsubscribe(ch chan domain.Notification) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// Subscribers returns the number of registered subscribers.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broker) Notify(_ context.Context, n domain.Notification) {
	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- n:
		default:
		}
	}
	b.mu.Unlock()
}
