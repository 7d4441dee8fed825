package anim

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/billie-coop/murmur/internal/tui/styles"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
)

const (
	// FPS is the draw-in frame rate.
	FPS = 30

	// MinCycle keeps very short estimates from flickering.
	MinCycle = 800 * time.Millisecond
)

var lastTag atomic.Int64

// TickMsg advances the Border identified by ID.
type TickMsg struct {
	ID  int64
	tag int64
}

// Border draws a message's top edge progressively. One cycle takes the
// message's estimated duration; the cycle repeats until Stop.
type Border struct {
	id     int64
	cycle  time.Duration
	start  time.Time
	now    func() time.Time
	tag    int64
	active bool

	progress float64
}

// NewBorder creates a border for message id whose draw-in lasts estimate
// seconds.
func NewBorder(id int64, estimate float64) *Border {
	cycle := time.Duration(estimate * float64(time.Second))
	if cycle < MinCycle {
		cycle = MinCycle
	}
	return &Border{
		id:    id,
		cycle: cycle,
		now:   time.Now,
	}
}

// ID returns the message the border belongs to.
func (b *Border) ID() int64 { return b.id }

// Active reports whether the border is still animating.
func (b *Border) Active() bool { return b.active }

// Progress is the drawn fraction of the current cycle, 0..1.
func (b *Border) Progress() float64 {
	if !b.active {
		return 1
	}
	return b.progress
}

// Start begins drawing from zero.
func (b *Border) Start() tea.Cmd {
	b.active = true
	b.start = b.now()
	b.progress = 0
	b.tag = lastTag.Add(1)
	return b.tick()
}

// Stop freezes the border fully drawn.
func (b *Border) Stop() {
	b.active = false
	b.progress = 1
}

// Update advances the animation on its own ticks and ignores everything
// else, including ticks from an earlier Start.
func (b *Border) Update(msg tea.Msg) tea.Cmd {
	tick, ok := msg.(TickMsg)
	if !ok || tick.ID != b.id || tick.tag != b.tag || !b.active {
		return nil
	}

	elapsed := b.now().Sub(b.start)
	b.progress = float64(elapsed%b.cycle) / float64(b.cycle)
	return b.tick()
}

func (b *Border) tick() tea.Cmd {
	id, tag := b.id, b.tag
	return tea.Tick(time.Second/FPS, func(time.Time) tea.Msg {
		return TickMsg{ID: id, tag: tag}
	})
}

// Render returns a width-wide top edge with label set into it. An active
// border fills left to right along the theme gradient; an inactive one is
// drawn complete in the muted border color.
func (b *Border) Render(width int, label string) string {
	return RenderTop(width, label, b.Progress(), b.active)
}

// RenderTop draws a rounded top edge "╭─ label ────╮". progress is the
// fraction of the dashes to draw; animated selects the gradient style.
func RenderTop(width int, label string, progress float64, animated bool) string {
	if width < 4 {
		return ""
	}

	theme := styles.CurrentTheme()
	border := lipgloss.RoundedBorder()

	head := border.TopLeft + border.Top
	if label != "" {
		head += " " + label + " "
	}
	fill := width - lipgloss.Width(head) - lipgloss.Width(border.TopRight)
	if fill < 0 {
		head = border.TopLeft
		fill = width - 2
	}

	if !animated {
		muted := lipgloss.NewStyle().Foreground(theme.Border).Faint(true)
		return muted.Render(head + strings.Repeat(border.Top, fill) + border.TopRight)
	}

	drawn := int(progress * float64(fill))
	drawn = min(max(drawn, 0), fill)

	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Render(head))
	colors := styles.BlendColors(fill, theme.Primary, theme.Secondary)
	for i := 0; i < drawn; i++ {
		sb.WriteString(lipgloss.NewStyle().Foreground(colors[i]).Render(border.Top))
	}
	sb.WriteString(strings.Repeat(" ", fill-drawn))
	corner := theme.Border
	if drawn == fill {
		corner = theme.Secondary
	}
	sb.WriteString(lipgloss.NewStyle().Foreground(corner).Render(border.TopRight))
	return sb.String()
}
