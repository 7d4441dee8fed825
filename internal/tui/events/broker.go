package events

import (
	"context"
	"sync"
)

const defaultBufferSize = 100

// Broker fans events out to subscribers. Publish blocks while a subscriber's
// buffer is full, so a slow reader never loses or reorders fragments; closing
// the subscription releases any blocked publisher.
type Broker struct {
	subscribers map[Channel][]*Subscription
	mu          sync.RWMutex
	bufferSize  int
}

// NewBroker creates a new event broker
func NewBroker() *Broker {
	return NewBrokerWithBuffer(defaultBufferSize)
}

// NewBrokerWithBuffer creates a broker whose subscriptions buffer size events.
func NewBrokerWithBuffer(size int) *Broker {
	if size < 1 {
		size = 1
	}
	return &Broker{
		subscribers: make(map[Channel][]*Subscription),
		bufferSize:  size,
	}
}

// Subscription is a scoped listener on one or more channels. The owner must
// call Close when done with it; Close is safe to call more than once.
type Subscription struct {
	broker   *Broker
	channels []Channel
	ch       chan Event
	done     chan struct{}
	once     sync.Once
}

// Subscribe creates a subscription to the given channels.
func (b *Broker) Subscribe(channels ...Channel) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscription{
		broker:   b,
		channels: channels,
		ch:       make(chan Event, b.bufferSize),
		done:     make(chan struct{}),
	}
	for _, c := range channels {
		b.subscribers[c] = append(b.subscribers[c], sub)
	}
	return sub
}

// Publish delivers payload to every subscriber of channel.
func (b *Broker) Publish(channel Channel, payload any) {
	b.PublishContext(context.Background(), channel, payload)
}

// PublishContext is Publish that gives up on a blocked subscriber once ctx is
// done. It returns ctx's error in that case.
func (b *Broker) PublishContext(ctx context.Context, channel Channel, payload any) error {
	b.mu.RLock()
	subs := append([]*Subscription(nil), b.subscribers[channel]...)
	b.mu.RUnlock()

	event := Event{Channel: channel, Payload: payload}
	for _, sub := range subs {
		select {
		case sub.ch <- event:
		case <-sub.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Next waits for the next event. It returns false once the subscription is
// closed or ctx ends.
func (s *Subscription) Next(ctx context.Context) (Event, bool) {
	select {
	case <-s.done:
		return Event{}, false
	default:
	}

	select {
	case ev := <-s.ch:
		return ev, true
	case <-s.done:
		return Event{}, false
	case <-ctx.Done():
		return Event{}, false
	}
}

// Close detaches the subscription from its broker. The event channel itself
// is never closed; Next reports the close instead.
func (s *Subscription) Close() {
	s.once.Do(func() {
		// Release blocked publishers before taking the broker lock.
		close(s.done)

		b := s.broker
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, c := range s.channels {
			b.removeSubscriber(c, s)
		}
	})
}

// removeSubscriber removes a subscription from one channel's list
func (b *Broker) removeSubscriber(channel Channel, target *Subscription) {
	subs := b.subscribers[channel]
	for i, sub := range subs {
		if sub == target {
			b.subscribers[channel] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}

	// Clean up empty subscriber lists
	if len(b.subscribers[channel]) == 0 {
		delete(b.subscribers, channel)
	}
}
