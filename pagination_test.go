package switchhub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemovePagePrompt(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		out   string
		found bool
	}{
		{"dashes", "before -- MORE -- after", "before  after", true},
		{"compact", "a\r\n--More--", "a\r\n", true},
		{"arrows", "x <--- More ---> y", "x  y", true},
		{"any key", "Press any key to continue\r\n", "\r\n", true},
		{"first occurrence only", "--More--a--More--", "a--More--", true},
		{"none", "switch#", "switch#", false},
		{"case matters", "-- more --", "-- more --", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, found := removePagePrompt(tt.in)
			if found != tt.found {
				t.Errorf("Expected found %v, got %v", tt.found, found)
			}
			if out != tt.out {
				t.Errorf("Expected %q, got %q", tt.out, out)
			}
		})
	}
}

func TestHandlePagination(t *testing.T) {
	s := newFakeSession()
	e := newTestEngine(t, &Workflow{Name: "t"}, s)

	buf := "before -- MORE -- after"
	paged, err := e.handlePagination(s, &buf)
	require.NoError(t, err)
	assert.True(t, paged)
	assert.Equal(t, "before  after", buf)
	assert.Equal(t, []string{" "}, s.written())

	paged, err = e.handlePagination(s, &buf)
	require.NoError(t, err)
	assert.False(t, paged)
	assert.Equal(t, 1, len(s.written()))
}

func TestHandlePaginationWriteError(t *testing.T) {
	s := newFakeSession()
	s.writeErr = errLineDown
	e := newTestEngine(t, &Workflow{Name: "t"}, s)

	buf := "--More--"
	_, err := e.handlePagination(s, &buf)
	assert.ErrorIs(t, err, errLineDown)
	assert.Equal(t, "--More--", buf)
}
