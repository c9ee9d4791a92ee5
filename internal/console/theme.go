package console

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sakif/symvora/internal/preferences"
)

// baseWidth is the card width at Medium font size.
const baseWidth = 64

// styles are the lipgloss styles for one theme and font size.
type styles struct {
	Title   lipgloss.Style
	Text    lipgloss.Style
	Muted   lipgloss.Style
	Faint   lipgloss.Style
	Info    lipgloss.Style
	Error   lipgloss.Style
	Card    lipgloss.Style
	Warning lipgloss.Style
}

const errorColor = "#E5484D"

// newStyles builds styles from the current preferences. A terminal cannot
// change its font, so the size setting changes card width and padding.
func newStyles(p *preferences.Settings) styles {
	pal := p.Theme().Palette()
	width := int(p.Scaled(baseWidth))

	pad := 1
	switch p.FontSize() {
	case preferences.Small:
		pad = 0
	case preferences.Large:
		pad = 2
	}

	return styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(pal.Primary)),
		Text:  lipgloss.NewStyle().Foreground(lipgloss.Color(pal.TextPrimary)),
		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color(pal.TextSecondary)),
		Faint: lipgloss.NewStyle().Foreground(lipgloss.Color(pal.TextTertiary)),
		Info:  lipgloss.NewStyle().Foreground(lipgloss.Color(pal.Primary)),
		Error: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(errorColor)),
		Warning: lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color(pal.TextSecondary)),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(pal.Primary)).
			Background(lipgloss.Color(pal.Surface)).
			Foreground(lipgloss.Color(pal.TextPrimary)).
			Padding(0, pad).
			Width(width),
	}
}

// card renders a titled box.
func (s styles) card(title string, lines ...string) string {
	body := strings.Join(lines, "\n")
	if title != "" {
		body = s.Title.Render(title) + "\n" + body
	}
	return s.Card.Render(body)
}
