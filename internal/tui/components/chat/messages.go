package chat

import (
	"strings"

	"github.com/billie-coop/murmur/internal/chat"
	"github.com/billie-coop/murmur/internal/tui/components/anim"
	"github.com/billie-coop/murmur/internal/tui/components/core"
	"github.com/billie-coop/murmur/internal/tui/styles"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/glamour/v2"
	"github.com/charmbracelet/lipgloss/v2"
)

// Labels set into each message's top border.
const (
	UserLabel      = "You"
	AssistantLabel = "murmur"
)

// MessageListModel renders the conversation in a scrolling viewport, one
// bordered container per message.
type MessageListModel struct {
	viewport viewport.Model
	width    int
	height   int

	state chat.State

	// border animates the open assistant message, nil when idle.
	border *anim.Border

	renderer      *glamour.TermRenderer
	rendererWidth int
	// rendered caches markdown for settled messages by ID.
	rendered map[int64]string
}

// Ensure MessageListModel implements required interfaces
var _ core.Component = (*MessageListModel)(nil)
var _ core.Sizeable = (*MessageListModel)(nil)

// NewMessageList creates a new message list component
func NewMessageList() *MessageListModel {
	vp := viewport.New()
	vp.MouseWheelEnabled = true

	return &MessageListModel{
		viewport: vp,
		rendered: make(map[int64]string),
	}
}

// Init initializes the message list component
func (ml *MessageListModel) Init() tea.Cmd {
	return nil
}

// Update advances the border animation and scrolls the viewport.
func (ml *MessageListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if tick, ok := msg.(anim.TickMsg); ok {
		if ml.border == nil {
			return ml, nil
		}
		cmd := ml.border.Update(tick)
		if cmd != nil {
			ml.refreshContent(false)
		}
		return ml, cmd
	}

	var cmd tea.Cmd
	ml.viewport, cmd = ml.viewport.Update(msg)
	return ml, cmd
}

// SetSize sets the dimensions of the message list
func (ml *MessageListModel) SetSize(width, height int) tea.Cmd {
	ml.width = width
	ml.height = height

	ml.viewport = viewport.New(
		viewport.WithWidth(width),
		viewport.WithHeight(height),
	)
	ml.viewport.MouseWheelEnabled = true

	// Wrapping depends on width.
	clear(ml.rendered)
	ml.refreshContent(true)
	return nil
}

// View renders the message list
func (ml *MessageListModel) View() string {
	return ml.viewport.View()
}

// SetState shows s and scrolls to the newest message. It starts the border
// animation when s opens a new placeholder and stops it on settlement.
func (ml *MessageListModel) SetState(s chat.State) tea.Cmd {
	ml.state = s
	if len(s.Messages) == 0 {
		clear(ml.rendered)
	}

	var cmd tea.Cmd
	switch {
	case s.Generating && (ml.border == nil || ml.border.ID() != s.OpenID):
		last, _ := s.Last()
		ml.border = anim.NewBorder(s.OpenID, last.Duration)
		cmd = ml.border.Start()
	case !s.Generating && ml.border != nil:
		ml.border.Stop()
		ml.border = nil
	}

	ml.refreshContent(true)
	return cmd
}

// Animating reports whether a border is drawing in.
func (ml *MessageListModel) Animating() bool {
	return ml.border != nil && ml.border.Active()
}

func (ml *MessageListModel) refreshContent(scroll bool) {
	ml.viewport.SetContent(ml.renderMessages())
	if scroll {
		ml.viewport.GotoBottom()
	}
}

func (ml *MessageListModel) renderMessages() string {
	theme := styles.CurrentTheme()

	if len(ml.state.Messages) == 0 {
		var sb strings.Builder
		sb.WriteString(styles.RenderThemeGradient("murmur", true))
		sb.WriteString("\n\n")
		sb.WriteString(theme.S().Muted.Italic(true).Render("Ready to chat."))
		sb.WriteString("\n")
		sb.WriteString(theme.S().Faint.Render("Enter sends, Shift+Enter adds a line, Ctrl+L clears."))
		return sb.String()
	}

	blocks := make([]string, 0, len(ml.state.Messages))
	for _, msg := range ml.state.Messages {
		blocks = append(blocks, ml.renderMessage(msg))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

// renderMessage draws one container: an animated or static top edge over a
// body with side and bottom borders.
func (ml *MessageListModel) renderMessage(msg chat.Message) string {
	s := styles.CurrentTheme().S()
	width := max(ml.width, 10)

	container := s.UserMessage
	label := UserLabel
	if msg.Role == chat.RoleAssistant {
		container = s.AssistantMessage
		label = AssistantLabel
	}
	container = container.Width(width)
	inner := width - container.GetHorizontalFrameSize()

	body := ml.renderBody(msg, inner)
	box := container.Render(body)

	open := ml.border != nil && msg.ID == ml.border.ID()
	var top string
	if open {
		top = ml.border.Render(lipgloss.Width(box), label)
	} else {
		top = anim.RenderTop(lipgloss.Width(box), label, 1, false)
	}
	return top + "\n" + box
}

func (ml *MessageListModel) renderBody(msg chat.Message, width int) string {
	s := styles.CurrentTheme().S()

	switch {
	case msg.Role == chat.RoleUser:
		return s.Base.Width(width).Render(msg.Content)
	case msg.Content == chat.ErrorText:
		return s.Error.Width(width).Render(msg.Content)
	case msg.Content == "":
		return s.Faint.Render("…")
	}

	open := ml.state.Generating && msg.ID == ml.state.OpenID
	if !open {
		if cached, ok := ml.rendered[msg.ID]; ok {
			return cached
		}
	}

	out := ml.renderMarkdown(msg.Content, width)
	if !open {
		ml.rendered[msg.ID] = out
	}
	return out
}

func (ml *MessageListModel) renderMarkdown(content string, width int) string {
	if ml.renderer == nil || ml.rendererWidth != width {
		r, err := styles.MarkdownRenderer(width)
		if err != nil {
			return content
		}
		ml.renderer, ml.rendererWidth = r, width
	}

	rendered, err := ml.renderer.Render(content)
	if err != nil {
		return content
	}
	// Glamour pads with blank lines; the border already separates messages.
	return strings.Trim(rendered, "\n")
}
