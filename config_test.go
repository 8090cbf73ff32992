package switchhub

import (
	"testing"
	"time"

	"github.com/allbin/switchhub/serial"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.NotNil(t, c.Opener)
	assert.NotNil(t, c.Logger)
	assert.Equal(t, 10*time.Millisecond, c.PollInterval)
	assert.Equal(t, 100*time.Millisecond, c.SettleDelay)
	assert.Equal(t, 250*time.Millisecond, c.BreakHold)
	assert.Equal(t, 1024, c.ChunkSize)
}

func TestInvalidEngineOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"nil opener", WithOpener(nil)},
		{"nil logger", WithLogger(nil)},
		{"zero poll", WithPollInterval(0)},
		{"negative settle", WithSettleDelay(-time.Second)},
		{"zero break hold", WithBreakHold(0)},
		{"zero chunk", WithChunkSize(0)},
		{"bad baud", WithSerialOptions(serial.WithBaudRate(12345))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("/dev/ttyS0", &Workflow{Name: "x"}, tt.opt)
			if err == nil {
				t.Errorf("Expected error for %s", tt.name)
			}
			assert.ErrorIs(t, err, ErrInvalidOption)
		})
	}
}

func TestWithSerialOptionsKeepsCause(t *testing.T) {
	_, err := New("/dev/ttyS0", &Workflow{Name: "x"}, WithSerialOptions(serial.WithBaudRate(12345)))
	assert.ErrorIs(t, err, serial.ErrInvalidBaudRate)
}
