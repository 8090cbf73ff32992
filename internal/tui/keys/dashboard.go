package keys

import "github.com/charmbracelet/bubbles/key"

// DashboardKeys drive the multi-port dashboard.
type DashboardKeys struct {
	CommonKeys
	Up           key.Binding
	Down         key.Binding
	NextWorkflow key.Binding
	PrevWorkflow key.Binding
	Start        key.Binding
	Stop         key.Binding
	Release      key.Binding
	Identify     key.Binding
	Enter        key.Binding
	HistoryUp    key.Binding
	HistoryDown  key.Binding
	ScrollUp     key.Binding
	ScrollDown   key.Binding
}

func NewDashboardKeys() DashboardKeys {
	return DashboardKeys{
		CommonKeys: NewCommonKeys(),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous port"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next port"),
		),
		NextWorkflow: key.NewBinding(
			key.WithKeys("w", "tab"),
			key.WithHelp("w/tab", "next workflow"),
		),
		PrevWorkflow: key.NewBinding(
			key.WithKeys("W", "shift+tab"),
			key.WithHelp("W", "previous workflow"),
		),
		Start: key.NewBinding(
			key.WithKeys("s", "enter"),
			key.WithHelp("s/enter", "start workflow"),
		),
		Stop: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "stop"),
		),
		Release: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset port"),
		),
		Identify: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "blink to identify cable"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send command"),
		),
		HistoryUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "older command"),
		),
		HistoryDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "newer command"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll log up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll log down"),
		),
	}
}

func (k DashboardKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Start, k.Stop, k.NextWorkflow, k.InsertMode, k.Quit}
}

func (k DashboardKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.ScrollUp, k.ScrollDown},
		{k.NextWorkflow, k.PrevWorkflow, k.Start, k.Stop, k.Release, k.Identify},
		{k.InsertMode, k.Enter, k.Escape},
		{k.Help, k.Quit},
	}
}
