package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// LogPane shows one engine's log and follows its tail unless the user has
// scrolled away from the bottom.
type LogPane struct {
	viewport viewport.Model
	raw      string
}

func NewLogPane(width, height int) *LogPane {
	return &LogPane{viewport: viewport.New(width, height)}
}

func (l *LogPane) SetSize(width, height int) {
	l.viewport.Width = width
	l.viewport.Height = height
}

// SetLog replaces the shown log. Nothing is re-rendered when it is unchanged.
func (l *LogPane) SetLog(log string) {
	if log == l.raw {
		return
	}
	follow := l.viewport.AtBottom() || l.raw == ""
	l.raw = log
	l.viewport.SetContent(strings.Join(FormatLog(log), "\n"))
	if follow {
		l.viewport.GotoBottom()
	}
}

func (l *LogPane) Clear() {
	l.raw = ""
	l.viewport.SetContent("")
}

// Update forwards resize and scroll keys to the viewport.
func (l *LogPane) Update(msg tea.Msg) tea.Cmd {
	switch msg.(type) {
	case tea.WindowSizeMsg, tea.KeyMsg, tea.MouseMsg:
		var cmd tea.Cmd
		l.viewport, cmd = l.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (l *LogPane) View() string {
	return l.viewport.View()
}
