package switchhub

import (
	"context"
	"time"
)

const (
	// IdentifyPayload is written over and over so the activity LED of the
	// cable's adapter, or a terminal on its far end, gives the port away.
	IdentifyPayload = "IDENTIFYING_PORT\r\n"

	// IdentifyInterval is the gap between two payload writes.
	IdentifyInterval = 50 * time.Millisecond

	// DefaultIdentifyDuration is how long identify keeps the line busy.
	DefaultIdentifyDuration = 20 * time.Second
)

// identifyPort opens port and writes IdentifyPayload every IdentifyInterval
// until d has passed or ctx ends. Both endings count as success.
func identifyPort(ctx context.Context, config Config, port string, d time.Duration) error {
	log := config.Logger.WithField("port", port)

	s, err := config.Opener(port)
	if err != nil {
		return &TransportError{Op: "open", Port: port, Err: err}
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.WithError(err).Warn("closing session")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	log.WithField("duration", d).Info("identify started")
	ticker := time.NewTicker(IdentifyInterval)
	defer ticker.Stop()

	payload := []byte(IdentifyPayload)
	writes := 0
	for {
		if _, err := s.Write(payload); err != nil {
			return &TransportError{Op: "write", Port: port, Err: err}
		}
		if dr, ok := s.(drainer); ok {
			if err := dr.Drain(); err != nil {
				return &TransportError{Op: "write", Port: port, Err: err}
			}
		}
		writes++

		select {
		case <-ctx.Done():
			log.WithField("writes", writes).Info("identify finished")
			return nil
		case <-ticker.C:
		}
	}
}
