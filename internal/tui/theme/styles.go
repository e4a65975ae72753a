package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// CreateUnifiedPanelStyle creates a consistent panel style
func CreateUnifiedPanelStyle(width, height int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Border(BorderStyleUnified).
		BorderForeground(lipgloss.Color(ColorBrightBlue)).
		Padding(0, 1).
		Foreground(lipgloss.Color(ColorWhite))
}

// CreateDropZoneStyle creates the dashed drop target
func CreateDropZoneStyle(width int, active bool) lipgloss.Style {
	color := ColorBrightBlack
	if active {
		color = ColorDropZone
	}
	return lipgloss.NewStyle().
		Width(width).
		Border(BorderStyleDrop).
		BorderForeground(lipgloss.Color(color)).
		Padding(1, 2).
		Align(lipgloss.Center)
}

// CreateSectionHeaderStyle creates a consistent section header style
func CreateSectionHeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorBrightCyan)).
		MarginBottom(1)
}

// CreateInfoTextStyle creates a consistent info text style
func CreateInfoTextStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorWhite))
}

// CreateSecondaryTextStyle creates a consistent secondary text style
func CreateSecondaryTextStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightBlack)).
		Italic(true)
}

// CreateFieldLabelStyle styles a configuration label, highlighted when focused
func CreateFieldLabelStyle(focused bool) lipgloss.Style {
	style := lipgloss.NewStyle().Width(14)
	if focused {
		return style.Foreground(lipgloss.Color(ColorBrightYellow)).Bold(true)
	}
	return style.Foreground(lipgloss.Color(ColorBrightBlack))
}

// CreateFolioStyle styles the simulated folio label
func CreateFolioStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorFolio))
}

// CreateMessageStyle styles a one-line message of the given level
func CreateMessageStyle(level int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(GetMessageColor(level)))
}

// CreateDialogStyle creates a consistent dialog style
func CreateDialogStyle(width int, borderColor string) lipgloss.Style {
	style := lipgloss.NewStyle().
		Border(BorderStyleUnified).
		Padding(1, 3).
		Width(width).
		Align(lipgloss.Center).
		Foreground(lipgloss.Color(ColorWhite))

	if borderColor != "" {
		style = style.BorderForeground(lipgloss.Color(borderColor))
	} else {
		style = style.BorderForeground(lipgloss.Color(ColorBrightBlue))
	}

	return style
}

// CreateHeaderStyle creates a consistent header style
func CreateHeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorBrightCyan)).
		MarginBottom(1).
		MarginLeft(1)
}

// CreateFooterStyle creates a consistent footer style
func CreateFooterStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightBlack)).
		MarginTop(1).
		MarginLeft(1)
}
