// Package websearch renders the results of the latest web search above the
// input. The panel is hidden until a search starts.
package websearch

import (
	"fmt"
	"strings"

	"github.com/billie-coop/murmur/internal/tui/components/core"
	"github.com/billie-coop/murmur/internal/tui/styles"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// Item is one hit shown in the panel.
type Item struct {
	Title string
	URL   string
}

// ResultsModel holds one search: its query, the hits that have arrived and
// whether it is still running.
type ResultsModel struct {
	id        int64
	query     string
	items     []Item
	searching bool
	failed    bool
	width     int
}

var _ core.Sizeable = (*ResultsModel)(nil)

// NewResults creates an empty, hidden panel.
func NewResults() *ResultsModel {
	return &ResultsModel{}
}

// Start shows a new search, dropping the previous one.
func (r *ResultsModel) Start(id int64, query string) {
	*r = ResultsModel{id: id, query: query, searching: true, width: r.width}
}

// ID returns the search the panel is showing. Hits for other ids are stale.
func (r *ResultsModel) ID() int64 {
	return r.id
}

// Add appends a hit for search id.
func (r *ResultsModel) Add(id int64, item Item) {
	if id != r.id || !r.searching {
		return
	}
	r.items = append(r.items, item)
}

// Finish marks search id done.
func (r *ResultsModel) Finish(id int64, err error) {
	if id != r.id {
		return
	}
	r.searching = false
	r.failed = err != nil
}

// Reset hides the panel.
func (r *ResultsModel) Reset() {
	*r = ResultsModel{width: r.width}
}

// Visible reports whether the panel takes up space.
func (r *ResultsModel) Visible() bool {
	return r.query != ""
}

// Searching reports whether a search is running.
func (r *ResultsModel) Searching() bool {
	return r.searching
}

// Items returns the hits shown.
func (r *ResultsModel) Items() []Item {
	return r.items
}

// SetSize implements the Sizeable interface
func (r *ResultsModel) SetSize(width, height int) tea.Cmd {
	r.width = width
	return nil
}

// Height is the number of rows View takes.
func (r *ResultsModel) Height() int {
	if !r.Visible() {
		return 0
	}
	return lipgloss.Height(r.View())
}

// View renders the panel, or nothing when hidden.
func (r *ResultsModel) View() string {
	if !r.Visible() || r.width == 0 {
		return ""
	}
	s := styles.CurrentTheme().S()
	box := s.Input.BorderForeground(styles.CurrentTheme().Secondary).Padding(0, 1)
	inner := max(r.width-box.GetHorizontalFrameSize(), 1)

	var title string
	titleStyle := s.Title
	switch {
	case r.searching:
		title = fmt.Sprintf("Searching the web for %q", r.query)
	case r.failed:
		title = fmt.Sprintf("%s Search for %q failed", styles.ErrorIcon, r.query)
		titleStyle = s.Error
	case len(r.items) == 0:
		title = fmt.Sprintf("No results for %q", r.query)
	default:
		title = fmt.Sprintf("Results for %q, sent with your next message", r.query)
	}

	lines := []string{titleStyle.Render(ansi.Truncate(title, inner, "…"))}
	for i, item := range r.items {
		lines = append(lines,
			ansi.Truncate(fmt.Sprintf("%d. %s", i+1, item.Title), inner, "…"),
			s.Faint.Render(ansi.Truncate("   "+item.URL, inner, "…")),
		)
	}

	return box.Width(r.width).Render(strings.Join(lines, "\n"))
}
