package switchhub

import (
	"bytes"
	"context"
	"regexp"
	"time"
)

// readPending returns whatever input is waiting, without blocking. NUL bytes
// are dropped and the rest is appended to the log as received.
func (e *Engine) readPending(s Session) (string, error) {
	n, err := s.InputWaiting()
	if err != nil {
		return "", &TransportError{Op: "read", Port: e.port, Err: err}
	}
	if n <= 0 {
		return "", nil
	}

	buf := make([]byte, min(n, e.config.ChunkSize))
	r, err := s.Read(buf)
	if err != nil {
		return "", &TransportError{Op: "read", Port: e.port, Err: err}
	}

	chunk := string(bytes.ReplaceAll(buf[:r], []byte{0}, nil))
	if chunk != "" {
		e.status.logRaw(chunk)
	}
	return chunk, nil
}

// readUntil accumulates output until pattern matches. Answering a pager
// restarts the deadline, so long listings do not count against it.
func (e *Engine) readUntil(ctx context.Context, s Session, pattern *regexp.Regexp, expr string, timeout time.Duration) error {
	var buf string
	start := time.Now()

	for time.Since(start) < timeout {
		if e.stopping(ctx) {
			return errStopped
		}

		chunk, err := e.readPending(s)
		if err != nil {
			return err
		}
		if chunk == "" {
			if !e.pause(ctx, e.config.PollInterval) {
				return errStopped
			}
			continue
		}

		buf += chunk
		paged, err := e.handlePagination(s, &buf)
		if err != nil {
			return err
		}
		if paged {
			start = time.Now()
			continue
		}
		if pattern.MatchString(buf) {
			return nil
		}
	}

	return &TimeoutError{Op: "expect", Pattern: expr, After: timeout}
}

// listen collects output for a fixed window. It never fails on silence and
// pagination does not extend the window.
func (e *Engine) listen(ctx context.Context, s Session, window time.Duration) error {
	var buf string
	start := time.Now()

	for time.Since(start) < window {
		if e.stopping(ctx) {
			return errStopped
		}

		chunk, err := e.readPending(s)
		if err != nil {
			return err
		}
		if chunk != "" {
			buf += chunk
			if _, err := e.handlePagination(s, &buf); err != nil {
				return err
			}
			continue
		}
		if !e.pause(ctx, e.config.PollInterval) {
			return errStopped
		}
	}
	return nil
}
