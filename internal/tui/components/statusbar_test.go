package components

import (
	"strings"
	"testing"

	"github.com/allbin/switchhub"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestStatusBarTruncatesWorkflowName(t *testing.T) {
	sb := NewStatusBar()
	sb.SetWidth(120)

	long := strings.Repeat("catalyst-factory-reset-", 6)
	out := sb.Render(StatusInfo{
		Mode:      "NORMAL",
		Port:      "/dev/ttyUSB0",
		Phase:     switchhub.PhaseRunning,
		Workflow:  long,
		Framing:   "9600 8N1",
		Timestamp: "12:00:00",
	})

	assert.Contains(t, out, "…")
	assert.NotContains(t, out, long)
	assert.Equal(t, 1, lipgloss.Height(out))
	assert.Equal(t, 120, lipgloss.Width(out))
}

func TestStatusBarKeepsShortWorkflowName(t *testing.T) {
	sb := NewStatusBar()
	sb.SetWidth(120)

	out := sb.Render(StatusInfo{
		Mode:     "INSERT",
		Port:     "/dev/ttyUSB1",
		Workflow: "show-version",
		Framing:  "9600 8N1",
		Failed:   2,
	})

	assert.Contains(t, out, "show-version")
	assert.Contains(t, out, "2 failed")
	assert.NotContains(t, out, "…")
}
