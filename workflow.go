package switchhub

import (
	"regexp"
	"time"
)

// BreakToken as a step's interrupt selects a hardware break instead of a
// literal payload.
const BreakToken = "__BREAK__"

const (
	// DefaultTimeoutSeconds applies to steps that do not set a timeout.
	DefaultTimeoutSeconds = 10

	// ManualListenSeconds is how long a manual command listens for output.
	ManualListenSeconds = 2
)

// Step is one unit of interaction with the device. Optional fields are nil
// when the description leaves them out.
type Step struct {
	Name       string
	StatusText string

	Command       *string
	Interrupt     *string
	ExpectPattern *string

	TimeoutSeconds          int
	RequirePhysicalInteract bool
	HoldInteractTimer       int
}

// Timeout is the step's deadline for its read or interrupt phase.
func (s *Step) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// HasInterrupt reports whether the step runs an interrupt sequence instead
// of a send/receive phase. An empty token counts as no interrupt.
func (s *Step) HasInterrupt() bool {
	return s.Interrupt != nil && *s.Interrupt != ""
}

// IsBreak reports whether the step interrupts with a hardware break.
func (s *Step) IsBreak() bool {
	return s.Interrupt != nil && *s.Interrupt == BreakToken
}

// Pattern compiles the expected pattern. Matching ignores case and treats
// the accumulated buffer as multi-line so ^ and $ anchor on device lines.
// It returns nil when the step expects nothing.
func (s *Step) Pattern() (*regexp.Regexp, error) {
	if s.ExpectPattern == nil {
		return nil, nil
	}
	return regexp.Compile("(?im)" + *s.ExpectPattern)
}

// Workflow is a linear script of steps run against one device session.
type Workflow struct {
	Name        string
	Description string
	Steps       []Step
}

// ManualWorkflow wraps a single operator-typed command: send it and listen
// for a couple of seconds so the reply lands in the log.
func ManualWorkflow(command string) *Workflow {
	return &Workflow{
		Name: "Manual Override",
		Steps: []Step{{
			Name:           "Manual TX",
			StatusText:     "Sending Manual Command...",
			Command:        &command,
			TimeoutSeconds: ManualListenSeconds,
		}},
	}
}
