package switchhub

import (
	"errors"
	"fmt"
	"time"
)

// Predefined error types for robust error handling
var (
	ErrWorkflowNotFound  = errors.New("workflow file not found")
	ErrMalformedWorkflow = errors.New("malformed workflow description")
	ErrMissingField      = errors.New("required field missing")
	// ErrInvalidField also covers a step that sets an interrupt without an
	// expect pattern, since nothing could tell when the interrupt worked.
	ErrInvalidField      = errors.New("invalid field value")
	ErrUnknownFormat     = errors.New("unknown workflow format")

	ErrNilWorkflow    = errors.New("workflow is nil")
	ErrInvalidOption  = errors.New("invalid engine option")
	ErrAlreadyStarted = errors.New("engine already started")
	ErrTimeout        = errors.New("timed out")

	ErrPortBusy    = errors.New("port is busy with a workflow or identify")
	ErrUnknownPort = errors.New("no engine registered for port")
)

// errStopped unwinds a run after Stop; it never reaches callers.
var errStopped = errors.New("workflow stopped")

// LoadError reports a workflow description that could not be read or parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return "load workflow: " + e.Err.Error()
	}
	return fmt.Sprintf("load workflow %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// TransportError reports a session that failed to open or a failed I/O call.
type TransportError struct {
	Op   string // open, write, read, break
	Port string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// TimeoutError reports a pattern or interrupt wait whose deadline elapsed.
type TimeoutError struct {
	Op      string // expect or interrupt
	Pattern string
	Token   string
	After   time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Op == "interrupt" {
		return fmt.Sprintf("timeout waiting for interrupt %q to produce %q after %s", e.Token, e.Pattern, e.After)
	}
	return fmt.Sprintf("timeout waiting for: %s (after %s)", e.Pattern, e.After)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }
