package switchhub

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Phase is where an engine is in its single run.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseCompleted
	PhaseFailed
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Done reports whether the phase is terminal.
func (p Phase) Done() bool {
	return p == PhaseCompleted || p == PhaseFailed || p == PhaseStopped
}

// Engine runs one workflow against one port, exactly once. Observers poll
// State from any goroutine while Run executes on its own.
type Engine struct {
	id       string
	port     string
	workflow *Workflow
	config   Config
	log      logrus.FieldLogger

	phase    atomic.Int32
	stopOnce sync.Once
	stopCh   chan struct{}

	status statusBoard
}

// New binds a workflow to a port. Nothing is opened until Run.
func New(port string, wf *Workflow, opts ...Option) (*Engine, error) {
	if wf == nil {
		return nil, ErrNilWorkflow
	}

	config, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	e := &Engine{
		id:       id,
		port:     port,
		workflow: wf,
		config:   config,
		stopCh:   make(chan struct{}),
		log: config.Logger.WithFields(logrus.Fields{
			"run_id":   id,
			"port":     port,
			"workflow": wf.Name,
		}),
	}
	e.status.setTotal(len(wf.Steps))
	return e, nil
}

// ID identifies this run in log records. Every engine gets a fresh one, so
// repeated runs on the same port stay apart.
func (e *Engine) ID() string { return e.id }

// Port is the port name the engine was bound to.
func (e *Engine) Port() string { return e.port }

// Workflow is the workflow being run. Callers must not modify it.
func (e *Engine) Workflow() *Workflow { return e.workflow }

// Phase is safe to call from any goroutine.
func (e *Engine) Phase() Phase { return Phase(e.phase.Load()) }

// State returns a consistent copy of the published status.
func (e *Engine) State() Status {
	return e.status.snapshot()
}

// Stop asks the run to halt at its next checkpoint. It does not wait for the
// run to return.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopCh) })
}

// Run executes the workflow. It returns nil when the workflow completes or is
// stopped (by Stop or ctx) and the failure otherwise; in both cases the
// outcome is also published through State.
func (e *Engine) Run(ctx context.Context) error {
	if !e.phase.CompareAndSwap(int32(PhaseIdle), int32(PhaseRunning)) {
		return ErrAlreadyStarted
	}

	started := time.Now()
	e.log.Info("workflow started")

	err := e.run(ctx)
	elapsed := time.Since(started).Round(time.Millisecond)

	switch {
	case errors.Is(err, errStopped):
		e.status.logLine("[SYSTEM] Workflow stopped")
		e.phase.Store(int32(PhaseStopped))
		e.log.WithField("elapsed", elapsed).Info("workflow stopped")
		return nil
	case err != nil:
		e.status.fail(err)
		e.phase.Store(int32(PhaseFailed))
		e.log.WithError(err).WithField("elapsed", elapsed).Error("workflow failed")
		return err
	}

	e.status.complete()
	e.phase.Store(int32(PhaseCompleted))
	e.log.WithField("elapsed", elapsed).Info("workflow finished")
	return nil
}

func (e *Engine) run(ctx context.Context) error {
	s, err := e.config.Opener(e.port)
	if err != nil {
		return &TransportError{Op: "open", Port: e.port, Err: err}
	}
	defer func() {
		if err := s.Close(); err != nil {
			e.log.WithError(err).Warn("closing session")
		}
	}()

	e.status.logLine(fmt.Sprintf("[SYSTEM] Workflow '%s' started on %s", e.workflow.Name, e.port))

	for i := range e.workflow.Steps {
		if e.stopping(ctx) {
			return errStopped
		}

		step := &e.workflow.Steps[i]
		e.status.beginStep(i, step)
		e.log.WithFields(logrus.Fields{
			"step":        step.Name,
			"index":       i + 1,
			"interactive": step.RequirePhysicalInteract,
		}).Debug("step started")

		if err := e.runStep(ctx, s, step); err != nil {
			if errors.Is(err, errStopped) {
				return err
			}
			return fmt.Errorf("step %q: %w", step.Name, err)
		}
	}

	if e.stopping(ctx) {
		return errStopped
	}
	return nil
}

func (e *Engine) runStep(ctx context.Context, s Session, step *Step) error {
	pattern, err := step.Pattern()
	if err != nil {
		return fmt.Errorf("%w: expect: %v", ErrInvalidField, err)
	}

	if step.HasInterrupt() {
		return e.interruptSequence(ctx, s, step, pattern)
	}

	if step.Command != nil {
		if err := e.writeLine(s, *step.Command); err != nil {
			return err
		}
	}

	switch {
	case pattern != nil:
		return e.readUntil(ctx, s, pattern, *step.ExpectPattern, step.Timeout())
	case step.TimeoutSeconds > 0:
		return e.listen(ctx, s, step.Timeout())
	}
	return nil
}

// stopping is the cancellation checkpoint.
func (e *Engine) stopping(ctx context.Context) bool {
	select {
	case <-e.stopCh:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// pause sleeps for d and reports false if a stop arrived first.
func (e *Engine) pause(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-e.stopCh:
		return false
	case <-ctx.Done():
		return false
	}
}

// writeLine transmits text with the console line terminator.
func (e *Engine) writeLine(s Session, text string) error {
	e.status.logLine("[TX] " + text)
	return e.write(s, []byte(text+"\r"))
}

// drainer is implemented by sessions that can wait for their transmit
// queue to empty.
type drainer interface {
	Drain() error
}

func (e *Engine) write(s Session, p []byte) error {
	if _, err := s.Write(p); err != nil {
		return &TransportError{Op: "write", Port: e.port, Err: err}
	}
	if d, ok := s.(drainer); ok {
		if err := d.Drain(); err != nil {
			return &TransportError{Op: "write", Port: e.port, Err: err}
		}
	}
	return nil
}
