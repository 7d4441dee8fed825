package tui

import (
	"context"
	"time"

	"github.com/billie-coop/murmur/internal/chat"
	tea "github.com/charmbracelet/bubbletea/v2"
)

const healthTimeout = 3 * time.Second

// send issues the backend request for the placeholder id. Fragments and the
// settlement come back through the event subscription, so the command
// itself yields nothing.
func (m *Model) send(id int64, prompt string) tea.Cmd {
	svc, ctx := m.app.Chat, m.ctx
	return func() tea.Msg {
		// The outcome, error included, arrives as a ChatSettled event.
		_ = svc.Send(ctx, id, prompt)
		return nil
	}
}

// webSearch runs search id. Hits and the outcome come back through the
// event subscription.
func (m *Model) webSearch(id int64, query string) tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		// Failures are reported by the SearchSettled and Status events.
		_, _ = a.WebSearch(ctx, id, query)
		return nil
	}
}

// clearConversation asks the backend to forget the conversation. The store
// is emptied when the cleared event arrives.
func (m *Model) clearConversation() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		if err := a.ClearConversation(); err != nil {
			return recordedMsg{err: err}
		}
		return nil
	}
}

// record saves the exchange that request id settled: the user message
// before it and the final assistant content.
func (m *Model) record(id int64) tea.Cmd {
	msgs := m.state.Messages
	var exchange []chat.Message
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].ID == id {
			if i > 0 && msgs[i-1].Role == chat.RoleUser {
				exchange = append(exchange, msgs[i-1])
			}
			exchange = append(exchange, msgs[i])
			break
		}
	}
	if len(exchange) == 0 {
		return nil
	}

	a := m.app
	return func() tea.Msg {
		return recordedMsg{err: a.Record(exchange...)}
	}
}

// checkHealth pings the model server once at startup.
func (m *Model) checkHealth() tea.Cmd {
	svc, parent := m.app.Chat, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, healthTimeout)
		defer cancel()
		return healthMsg{err: svc.HealthCheck(ctx)}
	}
}
