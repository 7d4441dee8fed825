package styles

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// RenderThemeGradient renders text with the current theme's primary gradient
func RenderThemeGradient(text string, bold bool) string {
	theme := CurrentTheme()
	return ApplyGradient(text, theme.Primary, theme.Secondary, bold)
}

// ApplyGradient colors each grapheme of text along a from..to blend.
func ApplyGradient(text string, from, to color.Color, bold bool) string {
	if text == "" {
		return ""
	}

	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}

	var out strings.Builder
	colors := BlendColors(len(clusters), from, to)
	for i, cluster := range clusters {
		out.WriteString(lipgloss.NewStyle().Foreground(colors[i]).Bold(bold).Render(cluster))
	}
	return out.String()
}

// BlendColors returns steps colors evenly spaced from c1 to c2 in HCL space.
func BlendColors(steps int, c1, c2 color.Color) []color.Color {
	if steps <= 0 {
		return nil
	}
	if steps == 1 {
		return []color.Color{c1}
	}

	a, _ := colorful.MakeColor(c1)
	b, _ := colorful.MakeColor(c2)

	colors := make([]color.Color, steps)
	for i := range colors {
		t := float64(i) / float64(steps-1)
		colors[i] = a.BlendHcl(b, t).Clamped()
	}
	return colors
}
