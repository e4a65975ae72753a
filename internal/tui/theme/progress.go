package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// CreateProgressTextStyle creates a style for progress text
func CreateProgressTextStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightCyan)).
		Bold(true)
}

// FormatProgressMessage formats a progress message with consistent styling
func FormatProgressMessage(operation, filename string, percent int) string {
	if percent >= 0 {
		return fmt.Sprintf("%s %s... %d%%", operation, filename, percent)
	}
	return fmt.Sprintf("%s %s...", operation, filename)
}
