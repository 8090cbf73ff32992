package switchhub

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// breakFollowUp is sent after every break. Some boot loaders only notice the
// break once they also see Ctrl-C or ESC on the line.
var breakFollowUp = []byte{0x03, 0x1b, 0x00}

// resetPrompt appears when a locked device offers to wipe its configuration.
const resetPrompt = "reset the"

// interruptSequence keeps sending the step's interrupt until the device shows
// the expected prompt or the step times out.
func (e *Engine) interruptSequence(ctx context.Context, s Session, step *Step, pattern *regexp.Regexp) error {
	token := *step.Interrupt
	if pattern == nil {
		return fmt.Errorf("%w: interrupt %q has no expect pattern", ErrInvalidField, token)
	}
	breakMode := step.IsBreak()
	timeout := step.Timeout()

	e.status.logLine("[SYSTEM] Starting Interrupt Sequence: " + token)

	var buf string
	start := time.Now()
	for time.Since(start) < timeout {
		if e.stopping(ctx) {
			return errStopped
		}

		if breakMode {
			if err := e.sendBreak(ctx, s); err != nil {
				return err
			}
			if err := e.write(s, breakFollowUp); err != nil {
				return err
			}
		} else if err := e.write(s, []byte(token)); err != nil {
			return err
		}

		if !e.pause(ctx, e.config.SettleDelay) {
			return errStopped
		}

		chunk, err := e.readPending(s)
		if err != nil {
			return err
		}
		if chunk == "" {
			continue
		}
		buf += chunk

		if breakMode && strings.Contains(buf, resetPrompt) {
			e.status.logLine("\n[SECURITY] Locked device detected. Authorizing destructive reset...")
			e.log.WithField("step", step.Name).Warn("confirming configuration reset on locked device")
			if err := e.writeLine(s, "y"); err != nil {
				return err
			}
			buf = ""
		}

		if pattern.MatchString(buf) {
			e.status.logLine("\n[SUCCESS] Interrupt matched target prompt.")
			return nil
		}
	}

	return &TimeoutError{Op: "interrupt", Token: token, Pattern: *step.ExpectPattern, After: timeout}
}

// sendBreak holds a break condition on the line. The break is always
// cleared, even when a stop cuts the hold short.
func (e *Engine) sendBreak(ctx context.Context, s Session) error {
	if err := s.SetBreak(); err != nil {
		return &TransportError{Op: "break", Port: e.port, Err: err}
	}
	held := e.pause(ctx, e.config.BreakHold)
	if err := s.ClearBreak(); err != nil {
		return &TransportError{Op: "break", Port: e.port, Err: err}
	}
	if !held {
		return errStopped
	}
	return nil
}
