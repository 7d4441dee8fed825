package styles

import (
	"github.com/charmbracelet/glamour/v2"
	"github.com/charmbracelet/glamour/v2/ansi"
)

// MarkdownRenderer returns a glamour renderer for the current theme that
// wraps at width.
func MarkdownRenderer(width int) (*glamour.TermRenderer, error) {
	return glamour.NewTermRenderer(
		glamour.WithStyles(CurrentTheme().S().Markdown),
		glamour.WithWordWrap(width),
	)
}

func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }
func uintPtr(u uint) *uint       { return &u }

func (t *Theme) buildMarkdownStyles() ansi.StyleConfig {
	hex := func(c interface{ RGBA() (r, g, b, a uint32) }) *string {
		return stringPtr(colorToHex(c))
	}

	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: hex(t.FgBase)},
		},
		BlockQuote: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: hex(t.FgMuted)},
			Indent:         uintPtr(1),
			IndentToken:    stringPtr("│ "),
		},
		List: ansi.StyleList{
			LevelIndent: 2,
		},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				BlockSuffix: "\n",
				Color:       hex(t.Secondary),
				Bold:        boolPtr(true),
			},
		},
		H1: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Prefix:          " ",
				Suffix:          " ",
				Color:           hex(t.FgInverted),
				BackgroundColor: hex(t.Primary),
				Bold:            boolPtr(true),
			},
		},
		H2: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Prefix: "## ", Color: hex(t.Accent), Bold: boolPtr(true)},
		},
		H3: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Prefix: "### ", Color: hex(t.Secondary)},
		},
		Text: ansi.StylePrimitive{Color: hex(t.FgBase)},
		Paragraph: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{BlockSuffix: "\n"},
		},
		Emph:   ansi.StylePrimitive{Italic: boolPtr(true)},
		Strong: ansi.StylePrimitive{Bold: boolPtr(true)},
		HorizontalRule: ansi.StylePrimitive{
			Color:  hex(t.FgSubtle),
			Format: "\n────────\n",
		},
		Item:        ansi.StylePrimitive{BlockPrefix: "• "},
		Enumeration: ansi.StylePrimitive{BlockPrefix: ". "},
		Link: ansi.StylePrimitive{
			Color:     hex(t.Blue),
			Underline: boolPtr(true),
		},
		LinkText: ansi.StylePrimitive{Color: hex(t.Blue)},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color:           hex(t.Accent),
				BackgroundColor: hex(t.BgSubtle),
			},
		},
		CodeBlock: ansi.StyleCodeBlock{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{
					Color:           hex(t.FgBase),
					BackgroundColor: hex(t.BgSubtle),
				},
				Margin: uintPtr(2),
			},
			Chroma: &ansi.Chroma{
				Text:            ansi.StylePrimitive{Color: hex(t.FgBase)},
				Error:           ansi.StylePrimitive{Color: hex(t.Error)},
				Comment:         ansi.StylePrimitive{Color: hex(t.FgMuted), Italic: boolPtr(true)},
				Keyword:         ansi.StylePrimitive{Color: hex(t.Primary), Bold: boolPtr(true)},
				KeywordType:     ansi.StylePrimitive{Color: hex(t.Blue)},
				Operator:        ansi.StylePrimitive{Color: hex(t.Orange)},
				Punctuation:     ansi.StylePrimitive{Color: hex(t.FgSubtle)},
				Name:            ansi.StylePrimitive{Color: hex(t.FgBase)},
				NameBuiltin:     ansi.StylePrimitive{Color: hex(t.Yellow)},
				NameTag:         ansi.StylePrimitive{Color: hex(t.Pink)},
				NameAttribute:   ansi.StylePrimitive{Color: hex(t.Cyan)},
				NameFunction:    ansi.StylePrimitive{Color: hex(t.Blue)},
				NameClass:       ansi.StylePrimitive{Color: hex(t.Purple), Bold: boolPtr(true)},
				LiteralNumber:   ansi.StylePrimitive{Color: hex(t.Yellow)},
				LiteralString:   ansi.StylePrimitive{Color: hex(t.Green)},
				GenericDeleted:  ansi.StylePrimitive{Color: hex(t.Error)},
				GenericInserted: ansi.StylePrimitive{Color: hex(t.Success)},
				Background:      ansi.StylePrimitive{BackgroundColor: hex(t.BgSubtle)},
			},
		},
	}
}
