package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/billie-coop/murmur/internal/app"
	"github.com/billie-coop/murmur/internal/chat"
	chatview "github.com/billie-coop/murmur/internal/tui/components/chat"
	"github.com/billie-coop/murmur/internal/tui/components/status"
	"github.com/billie-coop/murmur/internal/tui/components/websearch"
	"github.com/billie-coop/murmur/internal/tui/events"
	"github.com/billie-coop/murmur/internal/tui/styles"
	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"go.uber.org/zap"
)

// Model is the root TUI model. It owns the message store and is the only
// place the store changes.
type Model struct {
	width  int
	height int

	// Components
	messageList *chatview.MessageListModel
	input       *chatview.InputModel
	statusBar   *status.Component
	results     *websearch.ResultsModel
	keys        KeyMap

	// App holds all business logic
	app    *app.App
	logger *zap.Logger

	// Message store
	state chat.State
	ids   *chat.IDGenerator

	// searches numbers web searches so stale hits can be dropped.
	searches int64

	// Event system. sub lives as long as the model; Close releases it.
	sub    *events.Subscription
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates the TUI model for a running app and subscribes to the chat
// channels.
func New(a *app.App) *Model {
	logger := a.Logger.Named("tui")

	themes := styles.NewManager(styles.DefaultTheme)
	if err := themes.SetTheme(a.Config.Theme); err != nil {
		logger.Warn("unknown theme, using default",
			zap.String("theme", a.Config.Theme),
			zap.Strings("available", themes.List()))
	}
	styles.SetDefaultManager(themes)

	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		messageList: chatview.NewMessageList(),
		input:       chatview.NewInput(),
		statusBar:   status.New(),
		results:     websearch.NewResults(),
		keys:        DefaultKeyMap(),
		app:         a,
		logger:      logger,
		ids:         chat.NewIDGenerator(0),
		sub: a.EventBroker.Subscribe(
			events.ChatResponse,
			events.ChatSettled,
			events.ChatCleared,
			events.SearchResult,
			events.SearchSettled,
			events.Status,
		),
		ctx:    ctx,
		cancel: cancel,
	}
	m.statusBar.SetModel(a.Config.Model)
	return m
}

// Init restores the previous transcript, focuses the input and starts
// listening for events.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.messageList.Init(),
		m.input.Init(),
		m.statusBar.Init(),
		m.input.Focus(),
		m.listenForEvents(),
	}

	msgs, err := m.app.Restore()
	if err != nil {
		m.logger.Error("failed to restore session", zap.Error(err))
		cmds = append(cmds, m.statusBar.ShowError("Could not load the previous conversation"))
	} else if len(msgs) > 0 {
		m.state = chat.Reduce(m.state, chat.Restore{Messages: msgs})
		m.ids = chat.NewIDGenerator(chat.MaxID(msgs))
	}
	cmds = append(cmds, m.syncState(), m.checkHealth())

	return tea.Batch(cmds...)
}

// Update handles all TUI updates and routes to components
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.handleEvent(msg.Event)
		return m, tea.Batch(cmd, m.listenForEvents())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, m.resizeComponents()

	case chatview.SubmitMsg:
		return m, m.handleSubmit(msg.Text)

	case healthMsg:
		if msg.err != nil {
			m.logger.Warn("model server unreachable", zap.Error(msg.err))
			return m, m.statusBar.ShowWarning("Model server unreachable at " + m.app.Config.Host)
		}
		return m, nil

	case recordedMsg:
		if msg.err != nil {
			return m, m.statusBar.ShowError("Could not save the conversation")
		}
		return m, nil

	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Clear):
			if m.state.Generating {
				return m, m.statusBar.ShowWarning("Wait for the reply to finish")
			}
			return m, m.clearConversation()
		case key.Matches(msg, m.keys.Search):
			return m, m.handleSearch()
		}
		return m, m.updateInput(msg)
	}

	// Everything else goes to every component; each ignores what is not
	// addressed to it.
	var cmds []tea.Cmd
	_, cmd := m.messageList.Update(msg)
	cmds = append(cmds, cmd)
	_, cmd = m.statusBar.Update(msg)
	cmds = append(cmds, cmd)
	cmds = append(cmds, m.updateInput(msg))
	return m, tea.Batch(cmds...)
}

// View renders the message pane, the input and the status bar.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	parts := []string{m.messageList.View()}
	if m.results.Visible() {
		parts = append(parts, m.results.View())
	}
	parts = append(parts, m.input.View(), m.statusBar.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// State returns the current message store.
func (m *Model) State() chat.State {
	return m.state
}

// Close releases the event subscription and stops any in-flight request.
// It is safe to call more than once.
func (m *Model) Close() {
	m.cancel()
	m.sub.Close()
}

// handleSubmit runs the input contract on text. A blank submit does
// nothing; a submit while a reply is streaming keeps the text and warns.
func (m *Model) handleSubmit(text string) tea.Cmd {
	next, prompt, err := chat.Submit(m.state, text, m.ids)
	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		return nil
	case errors.Is(err, chat.ErrBusy):
		return m.statusBar.ShowWarning("Still replying, your message is kept")
	case err != nil:
		return nil
	}

	m.input.Reset()
	m.state = next
	if !m.results.Searching() {
		// Any results went out with this message.
		m.results.Reset()
	}
	return tea.Batch(
		m.syncState(),
		m.resizeComponents(),
		m.send(m.state.OpenID, prompt),
	)
}

// handleSearch searches the web for the input text. The results are shown
// above the input and go out with the next message.
func (m *Model) handleSearch() tea.Cmd {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		return m.statusBar.ShowInfo("Type what to search for, then press ctrl+f")
	}
	if m.results.Searching() {
		return m.statusBar.ShowWarning("A search is already running")
	}

	m.searches++
	m.input.Reset()
	m.results.Start(m.searches, query)
	return tea.Batch(
		m.resizeComponents(),
		m.webSearch(m.searches, query),
	)
}

// updateInput forwards msg to the input and re-lays out if it grew.
func (m *Model) updateInput(msg tea.Msg) tea.Cmd {
	before := m.input.Height()
	_, cmd := m.input.Update(msg)
	if m.input.Height() != before {
		return tea.Batch(cmd, m.resizeComponents())
	}
	return cmd
}

// syncState pushes the store to the components that display it.
func (m *Model) syncState() tea.Cmd {
	return tea.Batch(
		m.messageList.SetState(m.state),
		m.statusBar.SetBusy(m.state.Generating),
	)
}
