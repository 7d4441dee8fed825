// Package core holds the contracts shared by the TUI components. The root
// model drives each component through these.
package core

import tea "github.com/charmbracelet/bubbletea/v2"

// Component is a self-contained piece of the screen with its own update
// loop.
type Component interface {
	Init() tea.Cmd
	Update(tea.Msg) (tea.Model, tea.Cmd)
	View() string
}

// Sizeable components are laid out by the root model on every resize.
type Sizeable interface {
	SetSize(width, height int) tea.Cmd
}

// Focusable components take keyboard input once focused.
type Focusable interface {
	Focus() tea.Cmd
}
