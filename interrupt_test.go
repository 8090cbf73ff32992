package switchhub

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func interruptStep(token, expect string, timeout int) *Step {
	return &Step{
		Name:           "interrupt",
		Interrupt:      ptr(token),
		ExpectPattern:  ptr(expect),
		TimeoutSeconds: timeout,
	}
}

func runInterrupt(t *testing.T, e *Engine, s Session, step *Step) error {
	t.Helper()
	re, err := step.Pattern()
	require.NoError(t, err)
	return e.interruptSequence(context.Background(), s, step, re)
}

func TestInterruptLiteral(t *testing.T) {
	s := newFakeSession()
	e := newTestEngine(t, &Workflow{Name: "t"}, s)
	s.feedAfter(30*time.Millisecond, "\r\nrommon 1 >")

	err := runInterrupt(t, e, s, interruptStep("\x03", `rommon \d+ >`, 2))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, s.count("\x03"), 2)
	assert.Equal(t, 0, s.breaks)

	st := e.State()
	assert.Contains(t, st.Log, "[SYSTEM] Starting Interrupt Sequence: \x03\n")
	assert.Contains(t, st.Log, "\n[SUCCESS] Interrupt matched target prompt.\n")
}

func TestInterruptBreak(t *testing.T) {
	s := newFakeSession()
	e := newTestEngine(t, &Workflow{Name: "t"}, s)
	s.feedAfter(20*time.Millisecond, "\r\nswitch: ")

	err := runInterrupt(t, e, s, interruptStep(BreakToken, `switch:`, 2))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, s.breaks, 1)
	assert.Equal(t, s.breaks, s.clears)
	assert.False(t, s.inBreak())
	assert.True(t, s.wroteBytes([]byte{0x03, 0x1b, 0x00}))
	assert.Zero(t, s.count(BreakToken))
}

func TestInterruptBreakConfirmsResetOnce(t *testing.T) {
	s := newFakeSession().reply("y\r", "\r\nErasing...\r\nswitch: ")
	e := newTestEngine(t, &Workflow{Name: "t"}, s)
	s.feed("Password recovery is disabled. Would you like to reset the system? (y/n)")

	err := runInterrupt(t, e, s, interruptStep(BreakToken, `switch:`, 2))
	require.NoError(t, err)

	assert.Equal(t, 1, s.count("y\r"))
	st := e.State()
	assert.Contains(t, st.Log, "[SECURITY] Locked device detected")
	assert.Contains(t, st.Log, "[TX] y\n")
}

func TestInterruptBreakConfirmsEveryResetPrompt(t *testing.T) {
	s := newFakeSession()
	e := newTestEngine(t, &Workflow{Name: "t"}, s)
	s.feed("Would you like to reset the system? (y/n)")
	s.feedAfter(60*time.Millisecond, "\r\nAre you sure you want to reset the system? (y/n)")
	s.feedAfter(120*time.Millisecond, "\r\nswitch: ")

	err := runInterrupt(t, e, s, interruptStep(BreakToken, `switch:`, 2))
	require.NoError(t, err)

	assert.Equal(t, 2, s.count("y\r"))
	assert.Equal(t, 2, strings.Count(e.State().Log, "[SECURITY]"))
}

func TestInterruptLiteralIgnoresResetPrompt(t *testing.T) {
	s := newFakeSession()
	e := newTestEngine(t, &Workflow{Name: "t"}, s)
	s.feed("Would you like to reset the system?\r\n> ")

	err := runInterrupt(t, e, s, interruptStep("\x1b", `^> `, 2))
	require.NoError(t, err)
	assert.Zero(t, s.count("y\r"))
}

func TestInterruptZeroTimeout(t *testing.T) {
	s := newFakeSession()
	s.feed("rommon 1 >")
	e := newTestEngine(t, &Workflow{Name: "t"}, s)

	err := runInterrupt(t, e, s, interruptStep("\x03", "rommon", 0))

	var te *TimeoutError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "interrupt", te.Op)
	assert.Equal(t, "\x03", te.Token)
	assert.Empty(t, s.written())
}

func TestInterruptStopClearsBreak(t *testing.T) {
	s := newFakeSession()
	e := newTestEngine(t, &Workflow{Name: "t"}, s, WithBreakHold(5*time.Second))

	done := make(chan error, 1)
	go func() { done <- runInterrupt(t, e, s, interruptStep(BreakToken, "never", 30)) }()

	require.Eventually(t, s.inBreak, time.Second, time.Millisecond)
	e.Stop()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, errStopped)
	case <-time.After(time.Second):
		t.Fatal("interrupt did not stop")
	}
	assert.False(t, s.inBreak())
}

func TestInterruptWithoutPattern(t *testing.T) {
	s := newFakeSession()
	e := newTestEngine(t, &Workflow{Name: "t"}, s)
	step := &Step{Name: "x", Interrupt: ptr("\x03"), TimeoutSeconds: 1}

	err := e.interruptSequence(context.Background(), s, step, nil)
	assert.ErrorIs(t, err, ErrInvalidField)
	assert.Empty(t, s.written())
}
