package tui

import (
	tea "github.com/charmbracelet/bubbletea/v2"
)

const statusBarHeight = 1

// resizeComponents resizes all components based on current window size.
// The input and the search panel grow with their content, so the message
// pane takes what is left.
func (m *Model) resizeComponents() tea.Cmd {
	if m.width == 0 || m.height == 0 {
		return nil
	}

	var cmds []tea.Cmd
	cmds = append(cmds, m.input.SetSize(m.width, 0))
	cmds = append(cmds, m.statusBar.SetSize(m.width, statusBarHeight))
	cmds = append(cmds, m.results.SetSize(m.width, 0))

	messageListHeight := max(m.height-m.input.Height()-m.results.Height()-statusBarHeight, 1)
	cmds = append(cmds, m.messageList.SetSize(m.width, messageListHeight))

	return tea.Batch(cmds...)
}
