package components

import (
	"fmt"

	"github.com/allbin/switchhub"
	"github.com/allbin/switchhub/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
)

// PortRow is what the dashboard knows about one port.
type PortRow struct {
	Port     string
	Label    string
	Workflow string
	Phase    switchhub.Phase
	Status   switchhub.Status
}

const (
	columnKeyPort     = "port"
	columnKeyWorkflow = "workflow"
	columnKeyStep     = "step"
	columnKeyState    = "state"
	columnKeyMessage  = "message"
)

// PortTable lists every port with its engine's progress.
type PortTable struct {
	model    table.Model
	rows     []PortRow
	selected int
	width    int
}

func NewPortTable() *PortTable {
	pt := &PortTable{width: 80}
	pt.rebuild()
	return pt
}

func (pt *PortTable) SetWidth(width int) {
	pt.width = width
	pt.rebuild()
}

func (pt *PortTable) SetRows(rows []PortRow, selected int) {
	pt.rows = rows
	pt.selected = selected
	pt.rebuild()
}

// Height is the number of terminal lines the table occupies.
func (pt *PortTable) Height() int {
	return lipgloss.Height(pt.View())
}

func (pt *PortTable) View() string {
	return pt.model.View()
}

func (pt *PortTable) rebuild() {
	columns := []table.Column{
		table.NewColumn(columnKeyPort, "Port", 28),
		table.NewColumn(columnKeyWorkflow, "Workflow", 24),
		table.NewColumn(columnKeyStep, "Step", 7),
		table.NewColumn(columnKeyState, "State", 11),
		table.NewFlexColumn(columnKeyMessage, "Status", 1),
	}

	rows := make([]table.Row, 0, len(pt.rows))
	for _, r := range pt.rows {
		rows = append(rows, table.NewRow(table.RowData{
			columnKeyPort:     r.Label,
			columnKeyWorkflow: r.Workflow,
			columnKeyStep:     stepColumn(r.Status),
			columnKeyState:    table.NewStyledCell(r.Phase.String(), styles.PhaseStyle(r.Phase)),
			columnKeyMessage:  messageColumn(r),
		}))
	}

	pt.model = table.New(columns).
		WithRows(rows).
		WithTargetWidth(pt.width).
		BorderRounded().
		HeaderStyle(lipgloss.NewStyle().Bold(true).Foreground(styles.Text)).
		HighlightStyle(lipgloss.NewStyle().Background(styles.Surface1)).
		Focused(true).
		WithHighlightedRow(pt.selected)
}

func stepColumn(st switchhub.Status) string {
	if st.Step == 0 {
		return "-"
	}
	return fmt.Sprintf("%d/%d", st.Step, st.StepCount)
}

func messageColumn(r PortRow) any {
	if r.Status.Interactive {
		text := "ACTION: " + r.Status.Message
		if r.Status.HoldSeconds > 0 {
			text += fmt.Sprintf(" (hold %ds)", r.Status.HoldSeconds)
		}
		return table.NewStyledCell(text, lipgloss.NewStyle().Foreground(styles.Yellow).Bold(true))
	}
	return r.Status.Message
}
