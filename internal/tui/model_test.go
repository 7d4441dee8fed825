package tui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/billie-coop/murmur/internal/app"
	"github.com/billie-coop/murmur/internal/chat"
	"github.com/billie-coop/murmur/internal/config"
	"github.com/billie-coop/murmur/internal/llm"
	chatview "github.com/billie-coop/murmur/internal/tui/components/chat"
	"github.com/billie-coop/murmur/internal/tui/events"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scriptedClient streams a fixed reply, or fails after its chunks. It keeps
// the last request it was sent.
type scriptedClient struct {
	mu     sync.Mutex
	chunks []string
	err    error
	last   []llm.Message
}

func (c *scriptedClient) Complete(context.Context, []llm.Message) (string, error) {
	return strings.Join(c.chunks, ""), c.err
}

func (c *scriptedClient) Stream(_ context.Context, msgs []llm.Message, onChunk func(string)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = append([]llm.Message(nil), msgs...)
	for _, chunk := range c.chunks {
		onChunk(chunk)
	}
	return c.err
}

func (c *scriptedClient) HealthCheck(context.Context) error        { return nil }
func (c *scriptedClient) Models(context.Context) ([]string, error) { return nil, nil }

func newTestModel(t *testing.T, client llm.Client, configure ...func(*config.Config)) *Model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Persist = false
	for _, f := range configure {
		f(cfg)
	}

	a, err := app.New(cfg, app.Options{DataDir: t.TempDir(), Client: client})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	m := New(a)
	t.Cleanup(m.Close)
	m.Init()
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

// typeAndEnter fills the input and presses Enter, feeding the resulting
// submit back through Update.
func typeAndEnter(t *testing.T, m *Model, text string) tea.Cmd {
	t.Helper()
	m.input.SetValue(text)
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)

	submit, ok := cmd().(chatview.SubmitMsg)
	require.True(t, ok, "enter should submit")
	_, cmd = m.Update(submit)
	return cmd
}

// pump feeds n broker events into the model.
func pump(t *testing.T, m *Model, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		msg := m.listenForEvents()()
		require.IsType(t, eventMsg{}, msg)
		m.Update(msg)
	}
}

func TestModel_HelloEnter(t *testing.T) {
	client := &scriptedClient{chunks: []string{"Hi", " there"}}
	m := newTestModel(t, client)

	typeAndEnter(t, m, "Hello")

	state := m.State()
	want := []chat.Message{
		{ID: 1, Role: chat.RoleUser, Content: "Hello"},
		{ID: 2, Role: chat.RoleAssistant, Duration: 0.5, IsAI: true},
	}
	if diff := cmp.Diff(want, state.Messages); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, state.Generating)
	assert.Empty(t, m.input.Value(), "input is cleared on send")
	assert.True(t, m.messageList.Animating())

	require.NoError(t, m.app.Chat.Send(context.Background(), state.OpenID, "Hello"))
	pump(t, m, 2)
	assert.True(t, m.State().Generating, "generating until settlement")

	pump(t, m, 1)
	state = m.State()
	assert.False(t, state.Generating)
	last, _ := state.Last()
	assert.Equal(t, "Hi there", last.Content)
	assert.False(t, m.messageList.Animating())
	assert.Contains(t, m.View(), chatview.AssistantLabel)
}

func TestModel_WhitespaceEnterIsNoop(t *testing.T) {
	m := newTestModel(t, &scriptedClient{})

	cmd := typeAndEnter(t, m, "  ")
	assert.Nil(t, cmd)
	assert.Empty(t, m.State().Messages)
	assert.False(t, m.State().Generating)
}

func TestModel_ShiftEnterInsertsNewline(t *testing.T) {
	m := newTestModel(t, &scriptedClient{})
	m.input.SetValue("line one")

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter, Mod: tea.ModShift})
	if cmd != nil {
		_, isSubmit := cmd().(chatview.SubmitMsg)
		assert.False(t, isSubmit)
	}
	assert.Equal(t, "line one\n", m.input.Value())
	assert.Empty(t, m.State().Messages)
}

func TestModel_RejectionAfterZeroFragments(t *testing.T) {
	client := &scriptedClient{err: errors.New("connection refused")}
	m := newTestModel(t, client)

	typeAndEnter(t, m, "Hello")
	id := m.State().OpenID

	require.Error(t, m.app.Chat.Send(context.Background(), id, "Hello"))
	pump(t, m, 1)

	state := m.State()
	assert.False(t, state.Generating)
	require.Len(t, state.Messages, 2)
	assert.Equal(t, chat.ErrorText, state.Messages[1].Content)
	msg, ok := m.statusBar.Message()
	require.True(t, ok)
	assert.Equal(t, "Request failed", msg.Content)
}

func TestModel_SecondSubmitWhileBusyKeepsInput(t *testing.T) {
	m := newTestModel(t, &scriptedClient{})
	typeAndEnter(t, m, "first")

	typeAndEnter(t, m, "second")
	assert.Len(t, m.State().Messages, 2)
	assert.Equal(t, "second", m.input.Value())
}

func TestModel_ClearConversation(t *testing.T) {
	client := &scriptedClient{chunks: []string{"ok"}}
	m := newTestModel(t, client)

	typeAndEnter(t, m, "Hello")
	require.NoError(t, m.app.Chat.Send(context.Background(), m.State().OpenID, "Hello"))
	pump(t, m, 2)

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'l', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	pump(t, m, 1)

	assert.Empty(t, m.State().Messages)
	assert.Empty(t, m.app.Chat.History())
}

func TestModel_StaleSettlementIgnored(t *testing.T) {
	m := newTestModel(t, &scriptedClient{})
	typeAndEnter(t, m, "Hello")

	m.handleEvent(events.Event{
		Channel: events.ChatSettled,
		Payload: events.SettledPayload{RequestID: 99, Err: errors.New("old")},
	})
	assert.True(t, m.State().Generating)
}

func TestModel_CloseEndsListenLoop(t *testing.T) {
	m := newTestModel(t, &scriptedClient{})
	listen := m.listenForEvents()

	m.Close()
	assert.Nil(t, listen())
	m.Close()
}

func TestModel_QuitKeys(t *testing.T) {
	m := newTestModel(t, &scriptedClient{})

	for _, k := range []tea.KeyPressMsg{
		{Code: 'c', Mod: tea.ModCtrl},
		{Code: tea.KeyEscape},
	} {
		_, cmd := m.Update(k)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestModel_SearchShowsResultsAndFeedsNextSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body>
<div class="result"><a class="result__a" href="https://go.dev/doc/">Documentation</a></div>
<div class="result"><a class="result__a" href="https://pkg.go.dev/">Packages</a></div>
</body></html>`)
	}))
	defer srv.Close()

	client := &scriptedClient{chunks: []string{"See go.dev/doc"}}
	m := newTestModel(t, client, func(c *config.Config) { c.SearchEndpoint = srv.URL })
	paneBefore := m.messageList.View()

	m.input.SetValue("  go docs ")
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'f', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.Empty(t, m.input.Value())
	assert.True(t, m.results.Searching())
	assert.Contains(t, m.View(), "Searching the web")
	assert.Less(t, strings.Count(m.messageList.View(), "\n"), strings.Count(paneBefore, "\n"),
		"the panel takes rows from the message pane")

	_, err := m.app.WebSearch(context.Background(), m.results.ID(), "go docs")
	require.NoError(t, err)
	pump(t, m, 4) // two hits, a notice, the settlement

	assert.False(t, m.results.Searching())
	assert.Len(t, m.results.Items(), 2)
	assert.Contains(t, m.View(), "1. Documentation")

	typeAndEnter(t, m, "where are the docs?")
	assert.False(t, m.results.Visible(), "results go out with the message")

	require.NoError(t, m.app.Chat.Send(context.Background(), m.State().OpenID, "where are the docs?"))
	client.mu.Lock()
	defer client.mu.Unlock()
	require.Len(t, client.last, 3)
	assert.Contains(t, client.last[1].Content, "1. Documentation")
	assert.Equal(t, "where are the docs?", client.last[2].Content)
}

func TestModel_SearchNeedsQuery(t *testing.T) {
	m := newTestModel(t, &scriptedClient{})

	m.Update(tea.KeyPressMsg{Code: 'f', Mod: tea.ModCtrl})
	assert.False(t, m.results.Visible())
	notice, ok := m.statusBar.Message()
	require.True(t, ok)
	assert.Contains(t, notice.Content, "ctrl+f")
}
