package switchhub

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/allbin/switchhub/serial"
	"github.com/sirupsen/logrus"
)

// Session is the byte stream an engine drives. It is owned by exactly one
// engine for the whole run.
type Session interface {
	Write(p []byte) (int, error)
	// InputWaiting reports how many bytes Read can return without blocking.
	InputWaiting() (int, error)
	Read(p []byte) (int, error)
	SetBreak() error
	ClearBreak() error
	Close() error
}

// Opener opens the session for a named port.
type Opener func(port string) (Session, error)

// SerialOpener opens ports with the serial package, 9600 8N1 unless opts
// say otherwise.
func SerialOpener(opts ...serial.Option) Opener {
	return func(port string) (Session, error) {
		return serial.Open(port, opts...)
	}
}

// Config holds engine tuning. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	Opener       Opener
	Logger       logrus.FieldLogger
	PollInterval time.Duration // idle delay between input polls
	SettleDelay  time.Duration // wait after each interrupt transmission
	BreakHold    time.Duration // how long a break condition is held
	ChunkSize    int           // upper bound for a single read
}

// Option is a functional option for configuring an engine
type Option func(*Config) error

// DefaultConfig returns the timings that work with common switch consoles.
func DefaultConfig() Config {
	return Config{
		Opener:       SerialOpener(),
		Logger:       discardLogger(),
		PollInterval: 10 * time.Millisecond,
		SettleDelay:  100 * time.Millisecond,
		BreakHold:    250 * time.Millisecond,
		ChunkSize:    1024,
	}
}

// newConfig applies opts over the defaults. Every failure wraps
// ErrInvalidOption.
func newConfig(opts []Option) (Config, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			if errors.Is(err, ErrInvalidOption) {
				return Config{}, err
			}
			return Config{}, fmt.Errorf("%w: %w", ErrInvalidOption, err)
		}
	}
	return config, nil
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// WithOpener replaces how sessions are opened
func WithOpener(open Opener) Option {
	return func(c *Config) error {
		if open == nil {
			return ErrInvalidOption
		}
		c.Opener = open
		return nil
	}
}

// WithSerialOptions opens real serial ports with the given framing
func WithSerialOptions(opts ...serial.Option) Option {
	return func(c *Config) error {
		cfg := serial.DefaultConfig()
		for _, opt := range opts {
			if err := opt(&cfg); err != nil {
				return err
			}
		}
		c.Opener = SerialOpener(opts...)
		return nil
	}
}

// WithLogger sets the structured logger for lifecycle events
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Config) error {
		if l == nil {
			return ErrInvalidOption
		}
		c.Logger = l
		return nil
	}
}

// WithPollInterval sets the idle delay of the read loops
func WithPollInterval(d time.Duration) Option {
	return positiveDuration(d, func(c *Config) { c.PollInterval = d })
}

// WithSettleDelay sets the wait after each interrupt transmission
func WithSettleDelay(d time.Duration) Option {
	return positiveDuration(d, func(c *Config) { c.SettleDelay = d })
}

// WithBreakHold sets how long the break condition is asserted
func WithBreakHold(d time.Duration) Option {
	return positiveDuration(d, func(c *Config) { c.BreakHold = d })
}

// WithChunkSize bounds how much a single read may return
func WithChunkSize(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return ErrInvalidOption
		}
		c.ChunkSize = n
		return nil
	}
}

func positiveDuration(d time.Duration, set func(*Config)) Option {
	return func(c *Config) error {
		if d <= 0 {
			return ErrInvalidOption
		}
		set(c)
		return nil
	}
}
