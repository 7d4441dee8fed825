package styles

import (
	"fmt"
	"image/color"
	"sort"
	"sync"

	"github.com/charmbracelet/glamour/v2/ansi"
	"github.com/charmbracelet/lipgloss/v2"
)

// Theme holds semantic color names for consistency
type Theme struct {
	Name   string
	IsDark bool

	// Brand colors
	Primary   color.Color
	Secondary color.Color
	Tertiary  color.Color
	Accent    color.Color

	// Background colors
	BgBase   color.Color
	BgSubtle color.Color

	// Foreground colors
	FgBase     color.Color
	FgMuted    color.Color
	FgSubtle   color.Color
	FgInverted color.Color

	// Border colors
	Border      color.Color
	BorderFocus color.Color

	// Semantic colors
	Success color.Color
	Error   color.Color
	Warning color.Color
	Info    color.Color

	// Syntax colors, used by code blocks in replies
	Blue   color.Color
	Green  color.Color
	Yellow color.Color
	Purple color.Color
	Pink   color.Color
	Orange color.Color
	Cyan   color.Color

	once   sync.Once
	styles *Styles
}

type Styles struct {
	Base  lipgloss.Style
	Title lipgloss.Style
	Muted lipgloss.Style
	Faint lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Message containers. The top border is drawn separately so it can
	// be animated.
	UserMessage      lipgloss.Style
	AssistantMessage lipgloss.Style
	RoleLabel        lipgloss.Style

	Input        lipgloss.Style
	InputFocused lipgloss.Style
	StatusBar    lipgloss.Style

	Markdown ansi.StyleConfig
}

// S returns the theme's derived styles, built on first use.
func (t *Theme) S() *Styles {
	t.once.Do(func() {
		t.styles = t.buildStyles()
	})
	return t.styles
}

func (t *Theme) buildStyles() *Styles {
	base := lipgloss.NewStyle().
		Foreground(t.FgBase)

	message := base.
		Border(lipgloss.RoundedBorder()).
		BorderTop(false).
		Padding(0, 1)

	return &Styles{
		Base: base,

		Title: base.
			Foreground(t.Accent).
			Bold(true),

		Muted: base.Foreground(t.FgMuted),

		Faint: base.Foreground(t.FgSubtle).Faint(true),

		Success: base.Foreground(t.Success),
		Error:   base.Foreground(t.Error),
		Warning: base.Foreground(t.Warning),
		Info:    base.Foreground(t.Info),

		UserMessage: message.
			BorderForeground(t.Border),

		AssistantMessage: message.
			BorderForeground(t.Primary),

		RoleLabel: base.
			Foreground(t.FgMuted).
			Bold(true),

		Input: base.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border),

		InputFocused: base.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus),

		StatusBar: base.
			Background(t.BgSubtle).
			Foreground(t.FgBase).
			Padding(0, 1),

		Markdown: t.buildMarkdownStyles(),
	}
}

// Manager handles theme switching and registration
type Manager struct {
	mu      sync.RWMutex
	themes  map[string]*Theme
	current *Theme
}

var (
	defaultMu      sync.Mutex
	defaultManager *Manager
)

// DefaultTheme is used when no theme, or an unknown one, is requested.
const DefaultTheme = "loco"

func SetDefaultManager(m *Manager) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultManager = m
}

func DefaultManager() *Manager {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultManager == nil {
		defaultManager = NewManager(DefaultTheme)
	}
	return defaultManager
}

func CurrentTheme() *Theme {
	return DefaultManager().Current()
}

// NewManager registers the built-in themes and selects defaultTheme,
// falling back to DefaultTheme when it is unknown.
func NewManager(defaultTheme string) *Manager {
	m := &Manager{
		themes: make(map[string]*Theme),
	}
	m.Register(NewLocoTheme())
	m.Register(NewDuskTheme())
	m.Register(NewPaperTheme())

	m.current = m.themes[defaultTheme]
	if m.current == nil {
		m.current = m.themes[DefaultTheme]
	}
	return m
}

func (m *Manager) Register(theme *Theme) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.themes[theme.Name] = theme
}

func (m *Manager) Current() *Theme {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Manager) SetTheme(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if theme, ok := m.themes[name]; ok {
		m.current = theme
		return nil
	}
	return fmt.Errorf("theme %s not found", name)
}

// List returns registered theme names in sorted order.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.themes))
	for name := range m.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseHex converts a #rrggbb string to a color.
func ParseHex(hex string) color.Color {
	var r, g, b uint8
	fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// colorToHex formats c as #rrggbb, the form glamour expects.
func colorToHex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
