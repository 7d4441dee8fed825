package tui

import (
	"github.com/billie-coop/murmur/internal/chat"
	"github.com/billie-coop/murmur/internal/tui/components/status"
	"github.com/billie-coop/murmur/internal/tui/components/websearch"
	"github.com/billie-coop/murmur/internal/tui/events"
	tea "github.com/charmbracelet/bubbletea/v2"
	"go.uber.org/zap"
)

// listenForEvents waits for the next broker event. It yields nothing once
// the subscription is closed, which ends the listen loop.
func (m *Model) listenForEvents() tea.Cmd {
	sub, ctx := m.sub, m.ctx
	return func() tea.Msg {
		event, ok := sub.Next(ctx)
		if !ok {
			return nil
		}
		return eventMsg{event}
	}
}

// handleEvent applies one broker event to the store.
func (m *Model) handleEvent(event events.Event) tea.Cmd {
	switch event.Channel {
	case events.ChatResponse:
		payload, ok := event.Payload.(events.FragmentPayload)
		if !ok {
			return nil
		}
		m.state = chat.Reduce(m.state, chat.AppendFragment{Text: payload.Text})
		return m.syncState()

	case events.ChatSettled:
		payload, ok := event.Payload.(events.SettledPayload)
		if !ok || payload.RequestID != m.state.OpenID {
			return nil
		}
		m.state = chat.Settle(m.state, payload.RequestID, payload.Err)

		cmds := []tea.Cmd{m.syncState(), m.record(payload.RequestID)}
		if payload.Err != nil {
			m.logger.Error("chat request failed",
				zap.Int64("request", payload.RequestID),
				zap.Error(payload.Err))
			cmds = append(cmds, m.statusBar.ShowError("Request failed"))
		}
		return tea.Batch(cmds...)

	case events.ChatCleared:
		m.state = chat.Reduce(m.state, chat.Clear{})
		if !m.results.Searching() {
			m.results.Reset()
		}
		return tea.Batch(m.syncState(), m.resizeComponents(), m.statusBar.ShowInfo("Conversation cleared"))

	case events.SearchResult:
		payload, ok := event.Payload.(events.SearchResultPayload)
		if !ok {
			return nil
		}
		m.results.Add(payload.RequestID, websearch.Item{Title: payload.Title, URL: payload.URL})
		return m.resizeComponents()

	case events.SearchSettled:
		payload, ok := event.Payload.(events.SearchSettledPayload)
		if !ok {
			return nil
		}
		m.results.Finish(payload.RequestID, payload.Err)
		return m.resizeComponents()

	case events.Status:
		payload, ok := event.Payload.(events.StatusPayload)
		if !ok {
			return nil
		}
		return m.statusBar.SetMessage(payload.Message, status.ParseType(payload.Type))
	}
	return nil
}
