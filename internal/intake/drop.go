package intake

import (
	"net/url"
	"strings"
)

// ParseDropped splits text pasted by a terminal when files are dropped on it.
// Terminals differ: some paste shell-escaped paths ("my\ file.pdf"), some
// quote them ('my file.pdf'), some paste file:// URIs one per line.
func ParseDropped(text string) []string {
	var (
		paths   []string
		current strings.Builder
		quote   rune
		escaped bool
		started bool
	)

	flush := func() {
		if started {
			if p := normalizeDropped(current.String()); p != "" {
				paths = append(paths, p)
			}
		}
		current.Reset()
		started = false
	}

	for _, r := range strings.TrimSpace(text) {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			started = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			started = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			current.WriteRune(r)
			started = true
		}
	}
	flush()

	return paths
}

func normalizeDropped(p string) string {
	if strings.HasPrefix(p, "file://") {
		u, err := url.Parse(p)
		if err != nil {
			return ""
		}
		return u.Path
	}
	return p
}
