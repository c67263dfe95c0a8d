package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/attache-dl/attache/internal/catalog"
)

var darkBackground = termenv.HasDarkBackground()

// pick chooses the color variant matching the terminal background.
func pick(light, dark string) lipgloss.Color {
	if darkBackground {
		return lipgloss.Color(dark)
	}
	return lipgloss.Color(light)
}

var (
	// Colors
	ColorPrimary = pick("#7d56f4", "#bd93f9") // Purple
	ColorSuccess = pick("#008700", "#50fa7b") // Green
	ColorError   = pick("#d70000", "#ff5555") // Red
	ColorWarning = pick("#af8700", "#f1fa8c") // Yellow
	ColorActive  = pick("#0087af", "#8be9fd") // Cyan
	ColorSubtext = pick("#6c6c6c", "#6272a4") // Comment
	ColorBorder  = pick("#b2b2b2", "#44475a") // Selection

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	BorderStyle = lipgloss.NewStyle().
			Foreground(ColorBorder)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	SelectedRowStyle = lipgloss.NewStyle().
				Reverse(true)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	MetaStyle = lipgloss.NewStyle().
			Foreground(ColorSubtext)
)

// stateColor maps an attachment state to its glyph color.
func stateColor(s catalog.Status) lipgloss.Color {
	switch s {
	case catalog.StatusQueued:
		return ColorWarning
	case catalog.StatusDownloading:
		return ColorActive
	case catalog.StatusDownloaded:
		return ColorSuccess
	case catalog.StatusFailed:
		return ColorError
	}
	return ColorSubtext
}
