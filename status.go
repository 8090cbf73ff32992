package switchhub

import (
	"strings"
	"sync"
)

const (
	statusFinished = "Successfully Finished"
	statusFailed   = "Fatally Failed"
)

// Status is a point-in-time copy of an engine's progress.
type Status struct {
	Log         string // everything sent and received so far; only ever grows
	Message     string // human status line for the running step
	Interactive bool   // an operator must act on the device
	HoldSeconds int    // advisory duration for the interactive prompt
	Complete    bool
	Failed      bool
	Step        int // 1-based index of the current step, 0 before the first
	StepCount   int
}

// Running reports whether the engine has reached neither outcome. A stopped
// engine also reports true; use Engine.Phase to tell them apart.
func (s Status) Running() bool {
	return !s.Complete && !s.Failed
}

// statusBoard is the only state the engine shares with observers. Each
// method is one critical section.
type statusBoard struct {
	mu    sync.Mutex
	log   strings.Builder
	state Status
}

func (b *statusBoard) snapshot() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.state
	s.Log = b.log.String()
	return s
}

// logLine appends msg followed by a newline.
func (b *statusBoard) logLine(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.WriteString(msg)
	b.log.WriteByte('\n')
}

// logRaw appends device output exactly as received.
func (b *statusBoard) logRaw(chunk string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.WriteString(chunk)
}

func (b *statusBoard) setTotal(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.StepCount = n
}

func (b *statusBoard) beginStep(index int, step *Step) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Step = index + 1
	b.state.Message = step.StatusText
	b.state.Interactive = step.RequirePhysicalInteract
	b.state.HoldSeconds = 0
	if step.RequirePhysicalInteract {
		b.state.HoldSeconds = step.HoldInteractTimer
	}
}

func (b *statusBoard) complete() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Message = statusFinished
	b.state.Interactive = false
	b.state.HoldSeconds = 0
	b.state.Complete = true
	b.state.Failed = false
}

// fail records the error in the log and flags the run in one critical
// section, so no observer sees the flag without the reason.
func (b *statusBoard) fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.WriteString("[ERROR] Critical Failure: " + err.Error() + "\n")
	b.state.Message = statusFailed
	b.state.Interactive = false
	b.state.HoldSeconds = 0
	b.state.Complete = false
	b.state.Failed = true
}
