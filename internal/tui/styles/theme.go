package styles

import (
	"github.com/allbin/switchhub"
	"github.com/charmbracelet/lipgloss"
)

// Catppuccin Mocha
var (
	Base     = lipgloss.Color("#1e1e2e")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Surface2 = lipgloss.Color("#585b70")
	Overlay0 = lipgloss.Color("#6c7086")
	Subtext0 = lipgloss.Color("#a6adc8")
	Subtext1 = lipgloss.Color("#bac2de")
	Text     = lipgloss.Color("#cdd6f4")

	Blue   = lipgloss.Color("#89b4fa")
	Sky    = lipgloss.Color("#89dceb")
	Green  = lipgloss.Color("#a6e3a1")
	Yellow = lipgloss.Color("#f9e2af")
	Peach  = lipgloss.Color("#fab387")
	Red    = lipgloss.Color("#f38ba8")
	Mauve  = lipgloss.Color("#cba6f7")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Mauve).
			Background(Surface0).
			Padding(0, 1)

	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(Surface1)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Surface2).
			Padding(0, 1)

	// Banner for steps that need someone at the device.
	InteractStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Base).
			Background(Yellow).
			Padding(0, 1)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(Subtext0).
			Italic(true)

	// Log line prefixes
	TXStyle       = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	SystemStyle   = lipgloss.NewStyle().Foreground(Blue)
	SuccessStyle  = lipgloss.NewStyle().Foreground(Green).Bold(true)
	SecurityStyle = lipgloss.NewStyle().Foreground(Yellow).Bold(true)
	ErrorStyle    = lipgloss.NewStyle().Foreground(Red).Bold(true)
)

// PhaseColor is the accent used for an engine in the given phase.
func PhaseColor(p switchhub.Phase) lipgloss.Color {
	switch p {
	case switchhub.PhaseRunning:
		return Sky
	case switchhub.PhaseCompleted:
		return Green
	case switchhub.PhaseFailed:
		return Red
	case switchhub.PhaseStopped:
		return Yellow
	default:
		return Overlay0
	}
}

// PhaseStyle renders a phase label in its accent color.
func PhaseStyle(p switchhub.Phase) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(PhaseColor(p)).Bold(p != switchhub.PhaseIdle)
}
