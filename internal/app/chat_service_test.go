package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/billie-coop/murmur/internal/chat"
	"github.com/billie-coop/murmur/internal/config"
	"github.com/billie-coop/murmur/internal/llm"
	"github.com/billie-coop/murmur/internal/tui/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClient replays canned chunks and records each request.
type fakeClient struct {
	mu       sync.Mutex
	chunks   []string
	err      error
	requests [][]llm.Message
}

func (f *fakeClient) Complete(ctx context.Context, msgs []llm.Message) (string, error) {
	var out string
	err := f.Stream(ctx, msgs, func(s string) { out += s })
	return out, err
}

func (f *fakeClient) Stream(ctx context.Context, msgs []llm.Message, onChunk func(string)) error {
	f.mu.Lock()
	f.requests = append(f.requests, append([]llm.Message(nil), msgs...))
	chunks, err := f.chunks, f.err
	f.mu.Unlock()

	for _, c := range chunks {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		onChunk(c)
	}
	return err
}

func (f *fakeClient) HealthCheck(context.Context) error { return nil }

func (f *fakeClient) Models(context.Context) ([]string, error) {
	return []string{"granite3-moe", "llama3.2"}, nil
}

func (f *fakeClient) lastRequest() []llm.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func drain(t *testing.T, sub *events.Subscription) []events.Event {
	t.Helper()
	var got []events.Event
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		ev, ok := sub.Next(ctx)
		cancel()
		if !ok {
			return got
		}
		got = append(got, ev)
	}
}

func TestChatStream_PublishesFragmentsInOrder(t *testing.T) {
	client := &fakeClient{chunks: []string{"Hi", " there", ", how", " can I help?"}}
	broker := events.NewBroker()
	sub := broker.Subscribe(events.ChatResponse, events.ChatSettled)
	defer sub.Close()

	svc := NewChatService(client, broker, nil, ChatOptions{Window: 5, Limit: 10})
	require.NoError(t, svc.Send(context.Background(), 2, "Hello"))

	got := drain(t, sub)
	require.Len(t, got, 5)
	var text string
	for _, ev := range got[:4] {
		assert.Equal(t, events.ChatResponse, ev.Channel)
		text += ev.Payload.(events.FragmentPayload).Text
	}
	assert.Equal(t, "Hi there, how can I help?", text)

	settled := got[4]
	assert.Equal(t, events.ChatSettled, settled.Channel)
	payload := settled.Payload.(events.SettledPayload)
	assert.Equal(t, int64(2), payload.RequestID)
	assert.NoError(t, payload.Err)
	assert.Equal(t, text, payload.Reply)
}

func TestChatStream_RequestShape(t *testing.T) {
	client := &fakeClient{chunks: []string{"ok"}}
	svc := NewChatService(client, events.NewBroker(), nil, ChatOptions{Window: 5, Limit: 10})

	_, err := svc.ChatStream(context.Background(), "first")
	require.NoError(t, err)

	req := client.lastRequest()
	require.Len(t, req, 2)
	assert.Equal(t, llm.Message{Role: llm.RoleSystem, Content: DefaultSystemPrompt}, req[0])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "first"}, req[1])

	_, err = svc.ChatStream(context.Background(), "second")
	require.NoError(t, err)
	req = client.lastRequest()
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleSystem, Content: DefaultSystemPrompt},
		{Role: llm.RoleUser, Content: "first"},
		{Role: llm.RoleAssistant, Content: "ok"},
		{Role: llm.RoleUser, Content: "second"},
	}, req)
}

func TestChatStream_WindowAndLimit(t *testing.T) {
	client := &fakeClient{chunks: []string{"a"}}
	svc := NewChatService(client, events.NewBroker(), nil, ChatOptions{SystemPrompt: "sys", Window: 5, Limit: 10})

	for i := 0; i < 8; i++ {
		_, err := svc.ChatStream(context.Background(), "q")
		require.NoError(t, err)
	}

	assert.Len(t, svc.History(), 10)
	// system + 5 remembered + the new user turn
	assert.Len(t, client.lastRequest(), 7)
	assert.Equal(t, "sys", client.lastRequest()[0].Content)
}

func TestChatStream_FailureKeepsUserTurnOnly(t *testing.T) {
	client := &fakeClient{chunks: []string{"Partial"}, err: errors.New("connection reset")}
	broker := events.NewBroker()
	sub := broker.Subscribe(events.ChatSettled)
	defer sub.Close()

	svc := NewChatService(client, broker, nil, ChatOptions{Window: 5, Limit: 10})
	err := svc.Send(context.Background(), 7, "Hello")
	require.ErrorContains(t, err, "connection reset")

	assert.Equal(t, []llm.Message{{Role: llm.RoleUser, Content: "Hello"}}, svc.History())

	got := drain(t, sub)
	require.Len(t, got, 1)
	payload := got[0].Payload.(events.SettledPayload)
	assert.Equal(t, int64(7), payload.RequestID)
	assert.Error(t, payload.Err)
}

func TestChatStream_FailedSendsStayWithinLimit(t *testing.T) {
	client := &fakeClient{err: errors.New("model not loaded")}
	svc := NewChatService(client, events.NewBroker(), nil, ChatOptions{Window: 5, Limit: 4})

	for i := 0; i < 9; i++ {
		_, err := svc.ChatStream(context.Background(), "retry")
		require.Error(t, err)
	}
	assert.Len(t, svc.History(), 4)
}

func TestChatStream_EmptyReplyNotRemembered(t *testing.T) {
	svc := NewChatService(&fakeClient{}, events.NewBroker(), nil, ChatOptions{Window: 5, Limit: 10})

	reply, err := svc.ChatStream(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Empty(t, reply)
	assert.Len(t, svc.History(), 1)
}

func TestChatStream_CancelledWhileSubscriberBlocked(t *testing.T) {
	client := &fakeClient{chunks: []string{"a", "b", "c"}}
	broker := events.NewBrokerWithBuffer(1)
	sub := broker.Subscribe(events.ChatResponse)
	defer sub.Close()

	svc := NewChatService(client, broker, nil, ChatOptions{Window: 5, Limit: 10})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := svc.ChatStream(ctx, "Hello")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClearConversation(t *testing.T) {
	client := &fakeClient{chunks: []string{"a"}}
	broker := events.NewBroker()
	sub := broker.Subscribe(events.ChatCleared)
	defer sub.Close()

	svc := NewChatService(client, broker, nil, ChatOptions{Window: 5, Limit: 10})
	_, err := svc.ChatStream(context.Background(), "q")
	require.NoError(t, err)

	svc.ClearConversation()
	assert.Empty(t, svc.History())
	assert.Len(t, drain(t, sub), 1)

	_, err = svc.ChatStream(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Len(t, client.lastRequest(), 2)
}

func TestApp_RestoreRecordClear(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	client := &fakeClient{chunks: []string{"a"}}

	a, err := New(cfg, Options{DataDir: dir, Client: client})
	require.NoError(t, err)

	msgs, err := a.Restore()
	require.NoError(t, err)
	assert.Empty(t, msgs)
	require.NotEmpty(t, a.SessionID)

	exchange := []chat.Message{
		{ID: 1, Role: chat.RoleUser, Content: "Hello"},
		{ID: 2, Role: chat.RoleAssistant, Content: "Hi", IsAI: true},
		{ID: 3, Role: chat.RoleUser, Content: "again"},
		{ID: 4, Role: chat.RoleAssistant, Content: chat.ErrorText, IsAI: true},
	}
	require.NoError(t, a.Record(exchange...))
	require.NoError(t, a.Close())

	a, err = New(cfg, Options{DataDir: filepath.Clean(dir), Client: client})
	require.NoError(t, err)
	defer a.Close()

	msgs, err = a.Restore()
	require.NoError(t, err)
	assert.Equal(t, exchange, msgs)
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: "Hello"},
		{Role: llm.RoleAssistant, Content: "Hi"},
		{Role: llm.RoleUser, Content: "again"},
	}, a.Chat.History())

	require.NoError(t, a.ClearConversation())
	assert.Empty(t, a.Chat.History())
	msgs, err = a.Sessions.Messages(a.SessionID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestApp_NoPersist(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Persist = false

	a, err := New(cfg, Options{DataDir: t.TempDir(), Client: &fakeClient{}})
	require.NoError(t, err)
	defer a.Close()

	msgs, err := a.Restore()
	require.NoError(t, err)
	assert.Nil(t, msgs)
	assert.NoError(t, a.Record(chat.Message{ID: 1, Role: chat.RoleUser, Content: "x"}))
	assert.NoError(t, a.ClearConversation())
}

func TestApp_UnknownProvider(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Provider = "carrier-pigeon"

	_, err := New(cfg, Options{DataDir: t.TempDir()})
	assert.ErrorIs(t, err, llm.ErrUnknownProvider)
}
