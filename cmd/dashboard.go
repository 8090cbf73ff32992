/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/allbin/switchhub"
	"github.com/allbin/switchhub/internal/tui/components"
	"github.com/allbin/switchhub/internal/tui/keys"
	"github.com/allbin/switchhub/internal/tui/models"
	"github.com/allbin/switchhub/internal/tui/styles"
	"github.com/allbin/switchhub/serial"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const refreshInterval = 100 * time.Millisecond

// dashboardCmd represents the dashboard command
var dashboardCmd = &cobra.Command{
	Use:   "dashboard [port...]",
	Short: "Drive several device consoles from one screen",
	Long: `Open an interactive dashboard with one row per serial port.

Pick a port and a workflow, start it, and watch the console traffic of
the selected port live. Steps that need someone at the device (holding a
button, power cycling) are highlighted. A manual command can be sent to
any idle port.

Without port arguments every detected serial port is shown.

Example usage:
  switchhub dashboard
  switchhub dashboard /dev/ttyUSB0 /dev/ttyUSB1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports := args
		if len(ports) == 0 {
			found, err := serial.ListPorts()
			if err != nil {
				return fmt.Errorf("listing ports: %w", err)
			}
			ports = found
		}
		if len(ports) == 0 {
			return errors.New("no serial ports found; pass ports explicitly")
		}

		workflows, err := switchhub.DiscoverWorkflows(cfg.WorkflowsDir)
		if err != nil {
			logger.WithError(err).Warn("no workflows directory")
		}

		// The screen belongs to the dashboard.
		if cfg.Log.File == "" {
			logger.SetOutput(io.Discard)
		}

		return runDashboard(ports, workflows)
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

type tickMsg time.Time

// identifyDoneMsg carries the outcome of an identify started from the
// dashboard.
type identifyDoneMsg struct {
	port string
	err  error
}

func waitIdentify(port string, result <-chan error) tea.Cmd {
	return func() tea.Msg {
		return identifyDoneMsg{port: port, err: <-result}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// dashboardModel represents the Bubble Tea model for the dashboard command
type dashboardModel struct {
	*models.Dashboard
	table     *components.PortTable
	logPane   *components.LogPane
	statusBar *components.StatusBar
	input     *components.Input
	help      help.Model
	keys      keys.DashboardKeys
	width     int
	height    int
	ready     bool
}

func runDashboard(ports, workflows []string) error {
	reg := switchhub.NewRegistry(cfg.EngineOptions(logger)...)
	d := models.NewDashboard(reg, ports, workflows)
	for _, port := range ports {
		if info, err := serial.GetPortInfo(port); err == nil {
			d.SetLabel(port, info.Label())
		}
	}

	m := &dashboardModel{
		Dashboard: d,
		table:     components.NewPortTable(),
		logPane:   components.NewLogPane(0, 0),
		statusBar: components.NewStatusBar(),
		input:     components.NewInput("Command for the selected port, Enter to send..."),
		help:      help.New(),
		keys:      keys.NewDashboardKeys(),
	}
	m.refresh()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if serr := d.Shutdown(ctx); errors.Is(serr, context.DeadlineExceeded) {
		logger.Warn("engines still running at exit")
	}
	return err
}

func (m *dashboardModel) Init() tea.Cmd {
	return tick()
}

// refresh pulls the latest engine state into the widgets.
func (m *dashboardModel) refresh() {
	m.table.SetRows(m.Rows(), m.Selected())
	m.logPane.SetLog(m.Log())
}

func (m *dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(msg.Width)
		m.input.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.layout()
		m.ready = true

	case tickMsg:
		m.refresh()
		return m, tick()

	case identifyDoneMsg:
		if msg.err != nil {
			m.statusBar.SetNotice(fmt.Sprintf("identify %s: %v", msg.port, msg.err))
		} else {
			m.statusBar.SetNotice("identify on " + msg.port + " complete")
		}
		m.refresh()

	case tea.MouseMsg:
		cmds = append(cmds, m.logPane.Update(msg))

	case tea.KeyMsg:
		if m.IsInInsertMode() {
			switch {
			case key.Matches(msg, m.keys.Escape):
				m.SetInputMode(models.InputModeNormal)
				m.input.Blur()
				return m, nil
			case key.Matches(msg, m.keys.Enter):
				command := m.input.Value()
				if _, err := m.Send(command); err != nil {
					m.statusBar.SetNotice(err.Error())
				} else {
					m.statusBar.SetNotice("")
					m.input.AddToHistory(command)
					m.input.SetValue("")
				}
				m.refresh()
				return m, nil
			case key.Matches(msg, m.keys.HistoryUp):
				m.input.NavigateHistoryUp()
				return m, nil
			case key.Matches(msg, m.keys.HistoryDown):
				m.input.NavigateHistoryDown()
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		m.statusBar.SetNotice("")
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.layout()
		case key.Matches(msg, m.keys.InsertMode):
			m.SetInputMode(models.InputModeInsert)
			m.input.Focus()
		case key.Matches(msg, m.keys.Up):
			m.SelectPrev()
			m.logPane.Clear()
		case key.Matches(msg, m.keys.Down):
			m.SelectNext()
			m.logPane.Clear()
		case key.Matches(msg, m.keys.NextWorkflow):
			m.NextWorkflow()
		case key.Matches(msg, m.keys.PrevWorkflow):
			m.PrevWorkflow()
		case key.Matches(msg, m.keys.Start):
			if _, err := m.Start(); err != nil {
				m.statusBar.SetNotice(err.Error())
			}
		case key.Matches(msg, m.keys.Stop):
			if !m.Stop() {
				m.statusBar.SetNotice("nothing running on " + m.SelectedPort())
			}
		case key.Matches(msg, m.keys.Release):
			if err := m.Release(); err != nil {
				m.statusBar.SetNotice(err.Error())
			} else {
				m.logPane.Clear()
			}
		case key.Matches(msg, m.keys.Identify):
			port, result, err := m.Identify(switchhub.DefaultIdentifyDuration)
			if err != nil {
				m.statusBar.SetNotice(err.Error())
			} else {
				cmds = append(cmds, waitIdentify(port, result))
				m.statusBar.SetNotice(fmt.Sprintf("blinking %s for %s", port, switchhub.DefaultIdentifyDuration))
			}
		case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
			cmds = append(cmds, m.logPane.Update(msg))
		}
		m.refresh()
	}

	return m, tea.Batch(cmds...)
}

// layout gives the log pane whatever the table, input and bars leave over.
func (m *dashboardModel) layout() {
	used := m.table.Height() +
		1 + // log border
		3 + // input
		1 + // status bar
		1 + // notice
		lipgloss.Height(m.help.View(m.keys))
	height := m.height - used
	if height < 3 {
		height = 3
	}
	m.logPane.SetSize(m.width, height)
}

func (m *dashboardModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	running, failed := m.Counts()
	statusBar := m.statusBar.Render(components.StatusInfo{
		Mode:      m.GetInputMode().String(),
		Port:      m.SelectedPort(),
		Phase:     m.Phase(),
		Workflow:  m.WorkflowName(),
		Framing:   framing(),
		Running:   running,
		Failed:    failed,
		Timestamp: time.Now().Format("15:04:05"),
	})

	notice := styles.NoticeStyle.Render(m.statusBar.Notice())
	if st, ok := m.selectedState(); ok && st.Interactive {
		banner := "ACTION REQUIRED: " + st.Message
		if st.HoldSeconds > 0 {
			banner += fmt.Sprintf(" (hold for %d seconds)", st.HoldSeconds)
		}
		notice = styles.InteractStyle.Render(banner)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.table.View(),
		styles.ContentBorderStyle.Render(m.logPane.View()),
		notice,
		m.input.ViewWithMode(m.IsInInsertMode()),
		statusBar,
		m.help.View(m.keys),
	)
}

func (m *dashboardModel) selectedState() (switchhub.Status, bool) {
	for _, row := range m.Rows() {
		if row.Port == m.SelectedPort() {
			return row.Status, row.Phase != switchhub.PhaseIdle
		}
	}
	return switchhub.Status{}, false
}
