package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Heading styles section titles.
	Heading = lipgloss.NewStyle().Bold(true)

	// Muted styles secondary text.
	Muted = lipgloss.NewStyle().Faint(true)
)

// Swatch renders a colored dot for a hex color.
func Swatch(color string) string {
	if color == "" {
		return "●"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")
}

// Bar renders value as a horizontal bar scaled so that maxValue fills width.
func Bar(value, maxValue, width int, color string) string {
	if width <= 0 || maxValue <= 0 || value <= 0 {
		return ""
	}
	filled := value * width / maxValue
	if filled == 0 {
		filled = 1
	}
	filled = min(filled, width)
	bar := strings.Repeat("█", filled)
	if color == "" {
		return bar
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(bar)
}
