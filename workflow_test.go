package switchhub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepPattern(t *testing.T) {
	s := Step{ExpectPattern: ptr(`^switch#`)}
	re, err := s.Pattern()
	require.NoError(t, err)
	assert.True(t, re.MatchString("boot\r\nSWITCH# "))

	s = Step{}
	re, err = s.Pattern()
	require.NoError(t, err)
	assert.Nil(t, re)

	s = Step{ExpectPattern: ptr(`(unclosed`)}
	_, err = s.Pattern()
	assert.Error(t, err)
}

func TestStepInterruptKinds(t *testing.T) {
	tests := []struct {
		name      string
		interrupt *string
		has       bool
		brk       bool
	}{
		{"none", nil, false, false},
		{"empty", ptr(""), false, false},
		{"literal", ptr("\x03"), true, false},
		{"break", ptr(BreakToken), true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Step{Interrupt: tt.interrupt}
			if s.HasInterrupt() != tt.has {
				t.Errorf("Expected HasInterrupt %v, got %v", tt.has, s.HasInterrupt())
			}
			if s.IsBreak() != tt.brk {
				t.Errorf("Expected IsBreak %v, got %v", tt.brk, s.IsBreak())
			}
		})
	}
}

func TestManualWorkflow(t *testing.T) {
	wf := ManualWorkflow("show ip int brief")

	assert.Equal(t, "Manual Override", wf.Name)
	require.Len(t, wf.Steps, 1)
	step := wf.Steps[0]
	assert.Equal(t, "Manual TX", step.Name)
	assert.Equal(t, "Sending Manual Command...", step.StatusText)
	require.NotNil(t, step.Command)
	assert.Equal(t, "show ip int brief", *step.Command)
	assert.Nil(t, step.ExpectPattern)
	assert.Equal(t, 2*time.Second, step.Timeout())
}
