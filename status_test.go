package switchhub

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusBoard(t *testing.T) {
	var b statusBoard
	b.setTotal(2)
	b.logLine("[TX] show run")
	b.logRaw("hostname sw1\r\n")

	step := &Step{Name: "a", StatusText: "Doing a", RequirePhysicalInteract: true, HoldInteractTimer: 10}
	b.beginStep(0, step)

	st := b.snapshot()
	assert.Equal(t, "[TX] show run\nhostname sw1\r\n", st.Log)
	assert.Equal(t, "Doing a", st.Message)
	assert.True(t, st.Interactive)
	assert.Equal(t, 10, st.HoldSeconds)
	assert.Equal(t, 1, st.Step)
	assert.Equal(t, 2, st.StepCount)
	assert.True(t, st.Running())

	b.beginStep(1, &Step{Name: "b", StatusText: "b", HoldInteractTimer: 10})
	st = b.snapshot()
	assert.False(t, st.Interactive)
	assert.Zero(t, st.HoldSeconds)

	b.complete()
	st = b.snapshot()
	assert.True(t, st.Complete)
	assert.False(t, st.Running())
	assert.Equal(t, "Successfully Finished", st.Message)
}

func TestStatusBoardFail(t *testing.T) {
	var b statusBoard
	b.logLine("x")
	b.fail(errors.New("boom"))

	st := b.snapshot()
	assert.True(t, st.Failed)
	assert.False(t, st.Complete)
	assert.Equal(t, "Fatally Failed", st.Message)
	assert.Equal(t, "x\n[ERROR] Critical Failure: boom\n", st.Log)
}

func TestStatusSnapshotsAreConsistent(t *testing.T) {
	var b statusBoard
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			b.logRaw("ab")
		}
		b.fail(errors.New("done"))
	}()

	prev := ""
	for i := 0; i < 500; i++ {
		st := b.snapshot()
		// The log only grows, and a failed status always carries its reason.
		assert.True(t, strings.HasPrefix(st.Log, prev))
		if st.Failed {
			assert.Contains(t, st.Log, "[ERROR] Critical Failure: done")
		}
		prev = st.Log
	}
	wg.Wait()
}
