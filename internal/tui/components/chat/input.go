package chat

import (
	"github.com/billie-coop/murmur/internal/tui/components/core"
	"github.com/billie-coop/murmur/internal/tui/styles"
	"github.com/charmbracelet/bubbles/v2/key"
	"github.com/charmbracelet/bubbles/v2/textarea"
	tea "github.com/charmbracelet/bubbletea/v2"
)

const (
	minInputLines = 1
	maxInputLines = 6
)

// SubmitMsg carries the raw input text when the user presses Enter. The
// receiver decides whether it is sendable.
type SubmitMsg struct {
	Text string
}

// InputKeyMap holds the bindings the input reacts to itself.
type InputKeyMap struct {
	Submit  key.Binding
	Newline key.Binding
}

// DefaultInputKeyMap returns the standard bindings.
func DefaultInputKeyMap() InputKeyMap {
	return InputKeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Newline: key.NewBinding(
			key.WithKeys("shift+enter", "alt+enter", "ctrl+j"),
			key.WithHelp("shift+enter", "new line"),
		),
	}
}

// InputModel is a multi-line text input that grows with its content
type InputModel struct {
	textarea textarea.Model
	keys     InputKeyMap
	width    int
}

// Ensure InputModel implements required interfaces
var _ core.Component = (*InputModel)(nil)
var _ core.Sizeable = (*InputModel)(nil)
var _ core.Focusable = (*InputModel)(nil)

// NewInput creates a new input component
func NewInput() *InputModel {
	ta := textarea.New()
	ta.Placeholder = "Send a message..."
	ta.Prompt = ""
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(minInputLines)
	// Newlines are inserted explicitly so plain Enter can submit.
	ta.KeyMap.InsertNewline.SetEnabled(false)

	return &InputModel{
		textarea: ta,
		keys:     DefaultInputKeyMap(),
	}
}

// Init initializes the input component
func (im *InputModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the input component
func (im *InputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyPressMsg); ok {
		switch {
		case key.Matches(msg, im.keys.Newline):
			im.textarea.InsertString("\n")
			im.fitHeight()
			return im, nil
		case key.Matches(msg, im.keys.Submit):
			text := im.textarea.Value()
			return im, func() tea.Msg { return SubmitMsg{Text: text} }
		}
	}

	var cmd tea.Cmd
	im.textarea, cmd = im.textarea.Update(msg)
	im.fitHeight()
	return im, cmd
}

// SetSize sets the width of the input component. Height follows content.
func (im *InputModel) SetSize(width, height int) tea.Cmd {
	im.width = width
	frame := styles.CurrentTheme().S().InputFocused.GetHorizontalFrameSize()
	im.textarea.SetWidth(max(width-frame, 1))
	return nil
}

// Height is the number of rows View occupies, borders included.
func (im *InputModel) Height() int {
	s := styles.CurrentTheme().S().InputFocused
	return im.textarea.Height() + s.GetVerticalFrameSize()
}

// View renders the input component
func (im *InputModel) View() string {
	s := styles.CurrentTheme().S()
	style := s.Input
	if im.textarea.Focused() {
		style = s.InputFocused
	}
	return style.Render(im.textarea.View())
}

// Focus focuses the input component
func (im *InputModel) Focus() tea.Cmd {
	return im.textarea.Focus()
}

// Value returns the current input value
func (im *InputModel) Value() string {
	return im.textarea.Value()
}

// SetValue sets the input value
func (im *InputModel) SetValue(value string) {
	im.textarea.SetValue(value)
	im.fitHeight()
}

// Reset clears the input
func (im *InputModel) Reset() {
	im.textarea.Reset()
	im.fitHeight()
}

func (im *InputModel) fitHeight() {
	lines := min(max(im.textarea.LineCount(), minInputLines), maxInputLines)
	if lines != im.textarea.Height() {
		im.textarea.SetHeight(lines)
	}
}
