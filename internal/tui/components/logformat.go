package components

import (
	"strings"
	"unicode/utf8"

	"github.com/allbin/switchhub/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// prefixStyles colors engine log lines by their tag. Device output is left
// as is.
var prefixStyles = []struct {
	prefix string
	style  lipgloss.Style
}{
	{"[TX]", styles.TXStyle},
	{"[SYSTEM]", styles.SystemStyle},
	{"[SUCCESS]", styles.SuccessStyle},
	{"[SECURITY]", styles.SecurityStyle},
	{"[ERROR]", styles.ErrorStyle},
}

// FormatLog splits an engine log into display lines.
func FormatLog(log string) []string {
	if log == "" {
		return nil
	}

	lines := strings.Split(strings.TrimSuffix(log, "\n"), "\n")
	for i, line := range lines {
		lines[i] = styleLine(sanitizeLine(line))
	}
	return lines
}

func styleLine(line string) string {
	for _, p := range prefixStyles {
		if strings.HasPrefix(line, p.prefix) {
			return p.style.Render(p.prefix) + line[len(p.prefix):]
		}
	}
	return line
}

// sanitizeLine drops carriage returns and backspaces the way a terminal
// would show them, and masks other control bytes so device output cannot
// move the cursor.
func sanitizeLine(line string) string {
	if i := strings.LastIndexByte(strings.TrimRight(line, "\r"), '\r'); i >= 0 {
		line = line[i+1:]
	}

	var b strings.Builder
	b.Grow(len(line))
	for _, r := range line {
		switch {
		case r == '\r':
		case r == '\b':
			s := b.String()
			if s != "" {
				_, size := utf8.DecodeLastRuneInString(s)
				b.Reset()
				b.WriteString(s[:len(s)-size])
			}
		case r == '\t':
			b.WriteString("    ")
		case r < 32 || r == 127:
			b.WriteRune('·')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
