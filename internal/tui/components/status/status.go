package status

import (
	"strings"
	"time"

	"github.com/billie-coop/murmur/internal/tui/components/core"
	"github.com/billie-coop/murmur/internal/tui/styles"
	"github.com/charmbracelet/bubbles/v2/spinner"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// MessageType represents the type of status message
type MessageType int

const (
	Info MessageType = iota
	Warning
	Error
	Success
)

// ParseType maps a type name ("warning", "error", "success") to a
// MessageType. Anything else is Info.
func ParseType(name string) MessageType {
	switch strings.ToLower(name) {
	case "warning":
		return Warning
	case "error":
		return Error
	case "success":
		return Success
	default:
		return Info
	}
}

// StatusMessage represents a status bar message
type StatusMessage struct {
	Content string
	Type    MessageType
	seq     int
}

// Component is the one-line bar under the input: a spinner while a reply
// streams on the left, the model name, and transient notices on the right.
type Component struct {
	spinner spinner.Model
	message *StatusMessage
	seq     int
	width   int

	busy  bool
	model string

	// Timer for clearing messages
	clearAfter time.Duration
}

var _ core.Component = (*Component)(nil)
var _ core.Sizeable = (*Component)(nil)

// New creates a new status bar component
func New() *Component {
	return &Component{
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		clearAfter: 5 * time.Second,
	}
}

// clearMessageMsg is sent when a status message should be cleared
type clearMessageMsg struct {
	seq int
}

// SetMessage shows content until it is replaced or clearAfter elapses.
func (c *Component) SetMessage(content string, msgType MessageType) tea.Cmd {
	c.seq++
	seq := c.seq
	c.message = &StatusMessage{Content: content, Type: msgType, seq: seq}

	return tea.Tick(c.clearAfter, func(time.Time) tea.Msg {
		return clearMessageMsg{seq: seq}
	})
}

// ShowInfo shows an info message
func (c *Component) ShowInfo(message string) tea.Cmd {
	return c.SetMessage(message, Info)
}

// ShowWarning shows a warning message
func (c *Component) ShowWarning(message string) tea.Cmd {
	return c.SetMessage(message, Warning)
}

// ShowError shows an error message
func (c *Component) ShowError(message string) tea.Cmd {
	return c.SetMessage(message, Error)
}

// Message returns the visible notice, if any.
func (c *Component) Message() (StatusMessage, bool) {
	if c.message == nil {
		return StatusMessage{}, false
	}
	return *c.message, true
}

// SetModel sets the model name shown in the bar.
func (c *Component) SetModel(name string) {
	c.model = name
}

// SetBusy starts or stops the spinner.
func (c *Component) SetBusy(busy bool) tea.Cmd {
	if busy == c.busy {
		return nil
	}
	c.busy = busy
	if busy {
		return c.spinner.Tick
	}
	return nil
}

// SetSize implements the Sizeable interface
func (c *Component) SetSize(width, height int) tea.Cmd {
	c.width = width
	return nil
}

// Init implements the Component interface
func (c *Component) Init() tea.Cmd {
	return nil
}

// Update implements the Component interface
func (c *Component) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clearMessageMsg:
		// Only clear if this is for the current message
		if c.message != nil && msg.seq == c.message.seq {
			c.message = nil
		}
	case spinner.TickMsg:
		if !c.busy {
			return c, nil
		}
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		return c, cmd
	}
	return c, nil
}

// View implements the Component interface
func (c *Component) View() string {
	if c.width == 0 {
		return ""
	}
	s := styles.CurrentTheme().S()

	left := ""
	if c.busy {
		left = c.spinner.View() + " " + s.Muted.Render("thinking")
	}
	if c.model != "" {
		if left != "" {
			left += s.Muted.Render(" · ")
		}
		left += s.Muted.Render(styles.ModelIcon + " " + c.model)
	}

	right := c.formatMessage()

	// Account for padding
	available := c.width - s.StatusBar.GetHorizontalFrameSize()
	if lipgloss.Width(left)+lipgloss.Width(right)+1 > available {
		right = truncate(right, max(available-lipgloss.Width(left)-1, 0))
	}
	gap := max(available-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return s.StatusBar.Width(c.width).Render(left + strings.Repeat(" ", gap) + right)
}

// formatMessage formats the status message with appropriate styling
func (c *Component) formatMessage() string {
	if c.message == nil {
		return ""
	}
	s := styles.CurrentTheme().S()

	switch c.message.Type {
	case Success:
		return s.Success.Render(styles.CheckIcon + " " + c.message.Content)
	case Warning:
		return s.Warning.Render(styles.WarningIcon + " " + c.message.Content)
	case Error:
		return s.Error.Render(styles.ErrorIcon + " " + c.message.Content)
	default:
		return s.Info.Render(c.message.Content)
	}
}

func truncate(str string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(str, width, "…")
}
