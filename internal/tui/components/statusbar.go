package components

import (
	"fmt"

	"github.com/allbin/switchhub"
	"github.com/allbin/switchhub/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// StatusInfo is everything the status bar shows.
type StatusInfo struct {
	Mode      string // NORMAL or INSERT
	Port      string
	Phase     switchhub.Phase
	Workflow  string // workflow that start would launch
	Framing   string // e.g. "9600 8N1"
	Running   int
	Failed    int
	Timestamp string
}

type StatusBar struct {
	width  int
	notice string
}

func NewStatusBar() *StatusBar {
	return &StatusBar{}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

// SetNotice shows a one-off message, such as why a start was refused.
func (sb *StatusBar) SetNotice(notice string) {
	sb.notice = notice
}

func (sb *StatusBar) Notice() string {
	return sb.notice
}

// Render lays the bar out vim style: mode, port, workflow on the left and
// counters on the right.
func (sb *StatusBar) Render(info StatusInfo) string {
	terminalWidth := sb.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}

	modeBackground := styles.Blue
	if info.Mode == "INSERT" {
		modeBackground = styles.Green
	}
	mode := lipgloss.NewStyle().
		Foreground(styles.Base).
		Background(modeBackground).
		Bold(true).
		Padding(0, 1).
		Render(info.Mode)

	port := lipgloss.NewStyle().
		Foreground(styles.Mauve).
		Bold(true).
		Padding(0, 1).
		Render(info.Port)

	indicator := lipgloss.NewStyle().
		Foreground(styles.PhaseColor(info.Phase)).
		Render(phaseGlyph(info.Phase))

	divider := lipgloss.NewStyle().
		Foreground(styles.Surface2).
		Padding(0, 1).
		Render("│")

	counts := lipgloss.NewStyle().
		Foreground(styles.Subtext0).
		Padding(0, 1).
		Render(fmt.Sprintf("⚡ %s  %d running  %d failed", info.Framing, info.Running, info.Failed))

	clock := lipgloss.NewStyle().
		Foreground(styles.Subtext1).
		Padding(0, 1).
		Render(info.Timestamp)

	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, counts, divider, clock)

	// The workflow name is the only part that gives way on narrow terminals.
	fixed := lipgloss.Width(mode) + lipgloss.Width(port) + lipgloss.Width(indicator) +
		lipgloss.Width(divider) + lipgloss.Width(rightSide)
	nameWidth := terminalWidth - fixed - 7 // arrow, padding, spare columns for the spacer
	workflowName := info.Workflow
	if runewidth.StringWidth(workflowName) > nameWidth {
		workflowName = runewidth.Truncate(workflowName, max(nameWidth, 1), "…")
	}

	workflow := lipgloss.NewStyle().
		Foreground(styles.Peach).
		Padding(0, 1).
		Render("▶ " + workflowName)

	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, mode, port, indicator, divider, workflow)

	spacerWidth := terminalWidth - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	return lipgloss.NewStyle().
		Foreground(styles.Text).
		Background(styles.Surface0).
		Width(terminalWidth).
		Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide))
}

func phaseGlyph(p switchhub.Phase) string {
	switch p {
	case switchhub.PhaseRunning:
		return "●"
	case switchhub.PhaseCompleted:
		return "✓"
	case switchhub.PhaseFailed:
		return "✗"
	case switchhub.PhaseStopped:
		return "■"
	default:
		return "○"
	}
}
