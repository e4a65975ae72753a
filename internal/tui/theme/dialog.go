package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// CreateNoticeStyle creates the blocking notice box, bordered in the level color
func CreateNoticeStyle(width, level int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(GetMessageColor(level))).
		Padding(1, 2).
		Align(lipgloss.Center)
}

// CreatePromptStyle creates a style for prompt text in dialogs
func CreatePromptStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightYellow)).
		Bold(true).
		Align(lipgloss.Center)
}

// CreateButtonStyle styles the submit control
func CreateButtonStyle(focused, enabled bool) lipgloss.Style {
	style := lipgloss.NewStyle().
		Padding(0, 2).
		Border(lipgloss.RoundedBorder())

	switch {
	case !enabled:
		return style.
			Foreground(lipgloss.Color(ColorDim)).
			BorderForeground(lipgloss.Color(ColorDim))
	case focused:
		return style.
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color(ColorBrightYellow)).
			BorderForeground(lipgloss.Color(ColorBrightYellow))
	default:
		return style.
			Foreground(lipgloss.Color(ColorBrightGreen)).
			BorderForeground(lipgloss.Color(ColorBrightGreen))
	}
}
