package utils

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

// TransferBar renders byte progress of a single transfer on a terminal
type TransferBar struct {
	bar *progressbar.ProgressBar
}

// NewTransferBar creates a byte progress bar writing to out
func NewTransferBar(out io.Writer, total int64, description string) *TransferBar {
	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(out)
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &TransferBar{bar: bar}
}

// Update moves the bar to the given absolute position
func (t *TransferBar) Update(loaded, total int64) {
	if total > 0 && t.bar.GetMax64() != total {
		t.bar.ChangeMax64(total)
	}
	_ = t.bar.Set64(loaded)
}

// Finish completes the bar
func (t *TransferBar) Finish() {
	_ = t.bar.Finish()
}

// FormatBytes formats bytes in human readable format
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%dB", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
