package form

import (
	"fmt"
	"strconv"
)

// FolioLabel renders the folio that will be stamped first: "#" followed by
// the start number zero-padded to four digits. Longer numbers keep every
// digit. Anything that is not a positive integer falls back to 1.
func FolioLabel(start string) string {
	n, ok := leadingInt(start)
	if !ok || n < 1 {
		n = 1
	}
	return fmt.Sprintf("#%04d", n)
}

// leadingInt parses the leading decimal digits of s, ignoring leading
// spaces and an optional sign. ok is false when there are no digits or the
// value does not fit in an int64.
func leadingInt(s string) (int64, bool) {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digits {
		return 0, false
	}

	n, err := strconv.ParseInt(s[start:i], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
