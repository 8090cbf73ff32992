package switchhub

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadUntilAcrossChunks(t *testing.T) {
	s := newFakeSession()
	e := newTestEngine(t, &Workflow{Name: "t"}, s)

	s.feed("Cisco IOS Soft")
	s.feedAfter(10*time.Millisecond, "ware, Version 15.2\r\nswitch#")

	re := regexp.MustCompile(`(?im)software, version`)
	err := e.readUntil(context.Background(), s, re, "software, version", time.Second)
	require.NoError(t, err)
	assert.True(t, logContains(e, "Cisco IOS Software, Version 15.2"))
}

func TestReadUntilTimeoutBound(t *testing.T) {
	s := newFakeSession()
	e := newTestEngine(t, &Workflow{Name: "t"}, s)

	timeout := 50 * time.Millisecond
	start := time.Now()
	err := e.readUntil(context.Background(), s, regexp.MustCompile("never"), "never", timeout)
	elapsed := time.Since(start)

	var te *TimeoutError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "never", te.Pattern)
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, timeout+100*time.Millisecond)
}

func TestReadUntilPaginationResetsDeadline(t *testing.T) {
	s := newFakeSession()
	e := newTestEngine(t, &Workflow{Name: "t"}, s)

	// Without the reset the final prompt would arrive after the deadline.
	s.feedAfter(50*time.Millisecond, "interface Gi0/1\r\n -- MORE --")
	s.feedAfter(110*time.Millisecond, "\r\ninterface Gi0/2\r\nswitch#")

	err := e.readUntil(context.Background(), s, regexp.MustCompile(`(?im)^switch#`), "^switch#", 80*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, s.count(" "))
	assert.True(t, logContains(e, "[Handling Pagination] "))
}

func TestReadUntilRepeatedPagination(t *testing.T) {
	s := newFakeSession()
	e := newTestEngine(t, &Workflow{Name: "t"}, s)

	// Each prompt lands inside the window opened by the previous one; the
	// prompt itself comes well after the nominal deadline.
	for i := 1; i <= 4; i++ {
		s.feedAfter(time.Duration(i)*60*time.Millisecond, fmt.Sprintf("line %d\r\n--More--", i))
	}
	s.feedAfter(300*time.Millisecond, "\r\nswitch#")

	start := time.Now()
	err := e.readUntil(context.Background(), s, regexp.MustCompile(`(?im)^switch#`), "^switch#", 80*time.Millisecond)
	require.NoError(t, err)
	assert.Greater(t, time.Since(start), 80*time.Millisecond)
	assert.Equal(t, 4, s.count(" "))
	assert.NotContains(t, e.State().Log, "[ERROR]")
}

func TestReadUntilStripsNUL(t *testing.T) {
	s := newFakeSession()
	e := newTestEngine(t, &Workflow{Name: "t"}, s)
	s.feed("sw\x00itch\x00#")

	err := e.readUntil(context.Background(), s, regexp.MustCompile("switch#"), "switch#", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "switch#", e.State().Log)
}

func TestReadUntilBoundedChunks(t *testing.T) {
	s := newFakeSession()
	e := newTestEngine(t, &Workflow{Name: "t"}, s, WithChunkSize(4))
	s.feed("0123456789 done")

	err := e.readUntil(context.Background(), s, regexp.MustCompile("done"), "done", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "0123456789 done", e.State().Log)
}

func TestReadUntilReadError(t *testing.T) {
	s := newFakeSession()
	s.readErr = errLineDown
	e := newTestEngine(t, &Workflow{Name: "t"}, s)

	err := e.readUntil(context.Background(), s, regexp.MustCompile("x"), "x", time.Second)
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "read", te.Op)
}

func TestListen(t *testing.T) {
	t.Run("silence is fine", func(t *testing.T) {
		s := newFakeSession()
		e := newTestEngine(t, &Workflow{Name: "t"}, s)
		assert.NoError(t, e.listen(context.Background(), s, 20*time.Millisecond))
	})

	t.Run("collects output and answers the pager", func(t *testing.T) {
		s := newFakeSession()
		e := newTestEngine(t, &Workflow{Name: "t"}, s)
		s.feed("line 1\r\n--More--")

		require.NoError(t, e.listen(context.Background(), s, 30*time.Millisecond))
		assert.Equal(t, []string{" "}, s.written())
		assert.True(t, logContains(e, "line 1"))
	})

	t.Run("pager does not extend the window", func(t *testing.T) {
		s := newFakeSession()
		e := newTestEngine(t, &Workflow{Name: "t"}, s)
		s.feedAfter(20*time.Millisecond, "--More--")

		start := time.Now()
		require.NoError(t, e.listen(context.Background(), s, 40*time.Millisecond))
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})
}

func TestListenStop(t *testing.T) {
	s := newFakeSession()
	e := newTestEngine(t, &Workflow{Name: "t"}, s)
	time.AfterFunc(10*time.Millisecond, e.Stop)

	err := e.listen(context.Background(), s, 10*time.Second)
	assert.ErrorIs(t, err, errStopped)
}
