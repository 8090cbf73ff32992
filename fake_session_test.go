package switchhub

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeSession is a scripted console. Replies can be queued directly, after a
// delay, or in response to an exact write.
type fakeSession struct {
	mu       sync.Mutex
	inbound  []byte
	writes   []string
	replies  map[string]string
	breakOn  bool
	breaks   int
	clears   int
	closed   bool
	writeErr error
	readErr  error
}

func newFakeSession() *fakeSession {
	return &fakeSession{replies: make(map[string]string)}
}

// reply queues out whenever exactly in is written.
func (f *fakeSession) reply(in, out string) *fakeSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[in] = out
	return f
}

func (f *fakeSession) feed(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbound = append(f.inbound, s...)
}

func (f *fakeSession) feedAfter(d time.Duration, s string) {
	time.AfterFunc(d, func() { f.feed(s) })
}

func (f *fakeSession) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.writes = append(f.writes, string(p))
	if out, ok := f.replies[string(p)]; ok {
		f.inbound = append(f.inbound, out...)
	}
	return len(p), nil
}

func (f *fakeSession) InputWaiting() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return 0, f.readErr
	}
	return len(f.inbound), nil
}

func (f *fakeSession) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := copy(p, f.inbound)
	f.inbound = f.inbound[n:]
	return n, nil
}

func (f *fakeSession) SetBreak() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.breakOn = true
	f.breaks++
	return nil
}

func (f *fakeSession) ClearBreak() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.breakOn = false
	f.clears++
	return nil
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSession) written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

func (f *fakeSession) count(s string) int {
	n := 0
	for _, w := range f.written() {
		if w == s {
			n++
		}
	}
	return n
}

func (f *fakeSession) inBreak() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.breakOn
}

func (f *fakeSession) wroteBytes(p []byte) bool {
	for _, w := range f.written() {
		if bytes.Equal([]byte(w), p) {
			return true
		}
	}
	return false
}

func openerFor(s Session) Opener {
	return func(string) (Session, error) { return s, nil }
}

func failingOpener(err error) Opener {
	return func(string) (Session, error) { return nil, err }
}

var errLineDown = errors.New("line down")

// fastOptions shrinks every engine timing so tests stay quick.
func fastOptions(open Opener) []Option {
	return []Option{
		WithOpener(open),
		WithPollInterval(time.Millisecond),
		WithSettleDelay(5 * time.Millisecond),
		WithBreakHold(2 * time.Millisecond),
	}
}

func newTestEngine(t *testing.T, wf *Workflow, s Session, extra ...Option) *Engine {
	t.Helper()
	e, err := New("/dev/ttyFAKE0", wf, append(fastOptions(openerFor(s)), extra...)...)
	require.NoError(t, err)
	return e
}

func ptr(s string) *string { return &s }

func logContains(e *Engine, s string) bool {
	return strings.Contains(e.State().Log, s)
}
