package models

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/allbin/switchhub"
	"github.com/allbin/switchhub/internal/tui/components"
)

var (
	ErrNoPort       = errors.New("no port selected")
	ErrNoWorkflow   = errors.New("no workflow available")
	ErrEmptyCommand = errors.New("empty command")
)

// IdentifyLabel replaces the workflow column while a port is identifying.
const IdentifyLabel = "identifying"

// InputMode represents the current input mode (vim-like)
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
)

func (m InputMode) String() string {
	if m == InputModeInsert {
		return "INSERT"
	}
	return "NORMAL"
}

// Dashboard is the state behind the dashboard view: which ports exist, which
// is selected, which workflow start would launch, and the registry that runs
// them.
type Dashboard struct {
	registry  *switchhub.Registry
	ports     []string
	labels    map[string]string
	workflows []string

	// identifies outlive key presses; Shutdown cancels them.
	identifyCtx    context.Context
	cancelIdentify context.CancelFunc

	mu            sync.RWMutex
	selected      int
	workflowIndex int
	inputMode     InputMode
}

// NewDashboard manages ports with reg. workflows are description file paths;
// each start re-reads the file so edits apply without a restart.
func NewDashboard(reg *switchhub.Registry, ports, workflows []string) *Dashboard {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dashboard{
		registry:       reg,
		ports:          ports,
		labels:         make(map[string]string),
		workflows:      workflows,
		identifyCtx:    ctx,
		cancelIdentify: cancel,
	}
}

func (d *Dashboard) Ports() []string {
	return d.ports
}

// SetLabel sets how a port is shown, e.g. with its USB product name.
func (d *Dashboard) SetLabel(port, label string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.labels[port] = label
}

func (d *Dashboard) Selected() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.selected
}

func (d *Dashboard) SelectedPort() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.ports) == 0 {
		return ""
	}
	return d.ports[d.selected]
}

func (d *Dashboard) SelectNext() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.ports) > 0 {
		d.selected = (d.selected + 1) % len(d.ports)
	}
}

func (d *Dashboard) SelectPrev() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.ports) > 0 {
		d.selected = (d.selected - 1 + len(d.ports)) % len(d.ports)
	}
}

func (d *Dashboard) WorkflowPath() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.workflows) == 0 {
		return ""
	}
	return d.workflows[d.workflowIndex]
}

// WorkflowName is the selected workflow's file name without extension.
func (d *Dashboard) WorkflowName() string {
	path := d.WorkflowPath()
	if path == "" {
		return "no workflows"
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (d *Dashboard) NextWorkflow() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.workflows) > 0 {
		d.workflowIndex = (d.workflowIndex + 1) % len(d.workflows)
	}
}

func (d *Dashboard) PrevWorkflow() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.workflows) > 0 {
		d.workflowIndex = (d.workflowIndex - 1 + len(d.workflows)) % len(d.workflows)
	}
}

// Start loads the selected workflow and runs it on the selected port.
func (d *Dashboard) Start() (*switchhub.Engine, error) {
	port := d.SelectedPort()
	if port == "" {
		return nil, ErrNoPort
	}
	path := d.WorkflowPath()
	if path == "" {
		return nil, ErrNoWorkflow
	}

	wf, err := switchhub.LoadWorkflow(path)
	if err != nil {
		return nil, err
	}
	return d.registry.Start(port, wf)
}

// Send runs command on the selected port as a manual one-step workflow.
func (d *Dashboard) Send(command string) (*switchhub.Engine, error) {
	port := d.SelectedPort()
	if port == "" {
		return nil, ErrNoPort
	}
	if strings.TrimSpace(command) == "" {
		return nil, ErrEmptyCommand
	}
	return d.registry.Start(port, switchhub.ManualWorkflow(command))
}

// Identify makes the selected port's cable identifiable for d. Start is
// refused on that port until the returned channel delivers the outcome.
func (d *Dashboard) Identify(duration time.Duration) (string, <-chan error, error) {
	port := d.SelectedPort()
	if port == "" {
		return "", nil, ErrNoPort
	}
	result, err := d.registry.Identify(d.identifyCtx, port, duration)
	return port, result, err
}

func (d *Dashboard) Stop() bool {
	port := d.SelectedPort()
	if port == "" {
		return false
	}
	return d.registry.Stop(port)
}

// Release forgets the selected port's finished engine so the port shows as
// idle again. A running engine has to be stopped first.
func (d *Dashboard) Release() error {
	port := d.SelectedPort()
	if port == "" {
		return ErrNoPort
	}
	e, ok := d.registry.Engine(port)
	if !ok {
		return switchhub.ErrUnknownPort
	}
	if !e.Phase().Done() {
		return switchhub.ErrPortBusy
	}
	// The run's own outcome is already in its log.
	if err := d.registry.Release(port); errors.Is(err, switchhub.ErrUnknownPort) {
		return err
	}
	return nil
}

// Log is the selected port's engine log, empty when it has none.
func (d *Dashboard) Log() string {
	st, _ := d.registry.State(d.SelectedPort())
	return st.Log
}

func (d *Dashboard) Phase() switchhub.Phase {
	if e, ok := d.registry.Engine(d.SelectedPort()); ok {
		return e.Phase()
	}
	return switchhub.PhaseIdle
}

func (d *Dashboard) Rows() []components.PortRow {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rows := make([]components.PortRow, 0, len(d.ports))
	for _, port := range d.ports {
		row := components.PortRow{Port: port, Label: port, Phase: switchhub.PhaseIdle}
		if label, ok := d.labels[port]; ok {
			row.Label = label
		}
		if e, ok := d.registry.Engine(port); ok {
			row.Workflow = e.Workflow().Name
			row.Phase = e.Phase()
			row.Status = e.State()
		}
		if d.registry.Identifying(port) {
			row.Workflow = IdentifyLabel
		}
		rows = append(rows, row)
	}
	return rows
}

// Counts reports how many engines are running and how many failed.
func (d *Dashboard) Counts() (running, failed int) {
	for _, row := range d.Rows() {
		switch row.Phase {
		case switchhub.PhaseRunning:
			running++
		case switchhub.PhaseFailed:
			failed++
		}
	}
	return running, failed
}

func (d *Dashboard) GetInputMode() InputMode {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.inputMode
}

func (d *Dashboard) SetInputMode(mode InputMode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inputMode = mode
}

func (d *Dashboard) IsInInsertMode() bool {
	return d.GetInputMode() == InputModeInsert
}

// Shutdown stops every engine and identify and waits for the engines until
// ctx ends.
func (d *Dashboard) Shutdown(ctx context.Context) error {
	d.cancelIdentify()
	d.registry.StopAll()
	return d.registry.WaitAll(ctx)
}
