package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBroker_DeliversInOrder(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe(ChatResponse)
	defer sub.Close()

	for _, text := range []string{"Hi", " there", "!"} {
		b.Publish(ChatResponse, FragmentPayload{Text: text})
	}

	var got string
	for i := 0; i < 3; i++ {
		ev, ok := sub.Next(context.Background())
		require.True(t, ok)
		assert.Equal(t, ChatResponse, ev.Channel)
		got += ev.Payload.(FragmentPayload).Text
	}
	assert.Equal(t, "Hi there!", got)
}

func TestBroker_OnlySubscribedChannels(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe(ChatSettled)
	defer sub.Close()

	b.Publish(ChatResponse, FragmentPayload{Text: "ignored"})
	b.Publish(ChatSettled, SettledPayload{RequestID: 4})

	ev, ok := sub.Next(context.Background())
	require.True(t, ok)
	assert.Equal(t, ChatSettled, ev.Channel)
	assert.Equal(t, int64(4), ev.Payload.(SettledPayload).RequestID)
	assert.Empty(t, sub.ch)
}

func TestBroker_MultipleChannelsShareOrder(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe(ChatResponse, ChatSettled)
	defer sub.Close()

	b.Publish(ChatResponse, FragmentPayload{Text: "a"})
	b.Publish(ChatResponse, FragmentPayload{Text: "b"})
	b.Publish(ChatSettled, SettledPayload{RequestID: 1})

	var channels []Channel
	for i := 0; i < 3; i++ {
		ev, _ := sub.Next(context.Background())
		channels = append(channels, ev.Channel)
	}
	assert.Equal(t, []Channel{ChatResponse, ChatResponse, ChatSettled}, channels)
}

func TestBroker_FullBufferBlocksUntilDrained(t *testing.T) {
	b := NewBrokerWithBuffer(1)
	sub := b.Subscribe(ChatResponse)
	defer sub.Close()

	b.Publish(ChatResponse, FragmentPayload{Text: "1"})

	published := make(chan struct{})
	go func() {
		defer close(published)
		b.Publish(ChatResponse, FragmentPayload{Text: "2"})
	}()

	select {
	case <-published:
		t.Fatal("publish should block while the buffer is full")
	case <-time.After(50 * time.Millisecond):
	}

	ev, _ := sub.Next(context.Background())
	assert.Equal(t, "1", ev.Payload.(FragmentPayload).Text)
	<-published
	ev, _ = sub.Next(context.Background())
	assert.Equal(t, "2", ev.Payload.(FragmentPayload).Text)
}

func TestSubscription_CloseReleasesBlockedPublisher(t *testing.T) {
	b := NewBrokerWithBuffer(1)
	sub := b.Subscribe(ChatResponse)
	b.Publish(ChatResponse, FragmentPayload{Text: "fills buffer"})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		b.Publish(ChatResponse, FragmentPayload{Text: "blocked"})
	}()

	time.Sleep(20 * time.Millisecond)
	sub.Close()
	wg.Wait()

	assert.Empty(t, b.subscribers[ChatResponse])
	_, ok := sub.Next(context.Background())
	assert.False(t, ok)
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe(ChatResponse, Status)
	other := b.Subscribe(ChatResponse)
	defer other.Close()

	sub.Close()
	sub.Close()

	assert.Len(t, b.subscribers[ChatResponse], 1)
	assert.Empty(t, b.subscribers[Status])

	// Publishing after close only reaches the remaining subscriber.
	b.Publish(ChatResponse, FragmentPayload{Text: "x"})
	assert.Len(t, other.ch, 1)
}

func TestPublishContext_Cancelled(t *testing.T) {
	b := NewBrokerWithBuffer(1)
	sub := b.Subscribe(ChatResponse)
	defer sub.Close()
	b.Publish(ChatResponse, FragmentPayload{Text: "fills buffer"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := b.PublishContext(ctx, ChatResponse, FragmentPayload{Text: "dropped"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSubscription_NextHonoursContext(t *testing.T) {
	sub := NewBroker().Subscribe(ChatResponse)
	defer sub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := sub.Next(ctx)
	assert.False(t, ok)
}
