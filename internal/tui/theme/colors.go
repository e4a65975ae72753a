package theme

// Terminal-compatible color constants using ANSI standard colors
const (
	ColorWhite        = "#FFFFFF" // ANSI 15 - primary text
	ColorBrightBlack  = "#808080" // ANSI 8 - secondary text
	ColorBrightBlue   = "#5C7CFA" // ANSI 12 - primary accent
	ColorBrightCyan   = "#66D9E8" // ANSI 14 - secondary accent
	ColorBrightGreen  = "#51CF66" // ANSI 10 - success
	ColorBrightYellow = "#FFD43B" // ANSI 11 - warning
	ColorBrightRed    = "#FF6B6B" // ANSI 9 - error
	ColorDim          = "#666666"

	ColorFolio    = "#FCC419" // folio label
	ColorDropZone = "#74C0FC"
)

// Message levels shared by the status line, notices and the preview caption
const (
	LevelInfo = iota
	LevelSuccess
	LevelWarning
	LevelError
	LevelLoading
)

// GetMessageColor returns the color for a message level
func GetMessageColor(level int) string {
	switch level {
	case LevelError:
		return ColorBrightRed
	case LevelSuccess:
		return ColorBrightGreen
	case LevelWarning:
		return ColorBrightYellow
	case LevelLoading:
		return ColorBrightBlue
	default:
		return ColorBrightCyan
	}
}

// GetMessageIcon returns the icon for a message level
func GetMessageIcon(level int) string {
	switch level {
	case LevelError:
		return "❌ "
	case LevelSuccess:
		return "✅ "
	case LevelWarning:
		return "⚠️ "
	case LevelLoading:
		return "⏳ "
	default:
		return "ℹ️ "
	}
}
