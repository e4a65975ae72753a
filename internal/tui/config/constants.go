package config

// Layout constants
const (
	// Panel layout
	LeftPanelWidthRatio = 0.5
	MinPanelWidth       = 36
	PanelSeparatorWidth = 2

	// Configuration panel
	FieldInputWidth = 10
	FileNameMaxLen  = 40

	// Dialog dimensions
	DialogDefaultWidth    = 56
	DialogLargeWidth      = 70
	FilePickerDialogWidth = 80
	FilePickerHeight      = 16
	ProgressBarWidth      = 44

	// Preview modal chrome: title, status and hint lines plus a margin
	ModalHeaderRows = 4

	// Preview images are fitted at twice the cell resolution so the
	// fullscreen modal stays sharp
	PreviewPixelScale = 2
)
