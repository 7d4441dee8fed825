package tui

import "github.com/charmbracelet/bubbles/v2/key"

// KeyMap holds the application-level bindings. Text editing keys belong to
// the input component.
type KeyMap struct {
	Quit   key.Binding
	Clear  key.Binding
	Search key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear conversation"),
		),
		Search: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "search the web for the input"),
		),
	}
}
