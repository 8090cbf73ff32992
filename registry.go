package switchhub

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Registry tracks at most one engine per port. It is owned by whoever
// coordinates the ports; engines never see it.
type Registry struct {
	opts []Option

	mu          sync.Mutex
	runs        map[string]*run
	identifying map[string]struct{}
}

type run struct {
	engine *Engine
	done   chan struct{}
	err    error // valid once done is closed
}

func (r *run) finished() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// NewRegistry returns an empty registry. opts are applied to every engine it
// starts.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		opts:        opts,
		runs:        make(map[string]*run),
		identifying: make(map[string]struct{}),
	}
}

// Start launches wf on port in its own goroutine. A finished engine on the
// same port is replaced; a running one, or an identify in progress, makes
// Start fail with ErrPortBusy.
func (r *Registry) Start(port string, wf *Workflow) (*Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.busy(port) {
		return nil, ErrPortBusy
	}

	e, err := New(port, wf, r.opts...)
	if err != nil {
		return nil, err
	}

	h := &run{engine: e, done: make(chan struct{})}
	r.runs[port] = h
	go func() {
		defer close(h.done)
		h.err = e.Run(context.Background())
	}()
	return e, nil
}

// Stop asks the engine on port to halt. It reports whether one was found.
func (r *Registry) Stop(port string) bool {
	h, ok := r.lookup(port)
	if ok {
		h.engine.Stop()
	}
	return ok
}

// Wait blocks until the engine on port returns and gives back its result.
func (r *Registry) Wait(port string) error {
	h, ok := r.lookup(port)
	if !ok {
		return ErrUnknownPort
	}
	<-h.done
	return h.err
}

// Release waits for the engine on port and forgets it.
func (r *Registry) Release(port string) error {
	h, ok := r.lookup(port)
	if !ok {
		return ErrUnknownPort
	}
	<-h.done

	r.mu.Lock()
	if r.runs[port] == h {
		delete(r.runs, port)
	}
	r.mu.Unlock()
	return h.err
}

// Identify writes IdentifyPayload to port for d in its own goroutine, so an
// operator can tell which physical cable the port is. The port is refused to
// Start until identify ends. The returned channel delivers the outcome once;
// cancelling ctx ends identify early without an error.
func (r *Registry) Identify(ctx context.Context, port string, d time.Duration) (<-chan error, error) {
	if d <= 0 {
		return nil, fmt.Errorf("%w: identify duration %s", ErrInvalidOption, d)
	}
	config, err := newConfig(r.opts)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.busy(port) {
		r.mu.Unlock()
		return nil, ErrPortBusy
	}
	r.identifying[port] = struct{}{}
	r.mu.Unlock()

	result := make(chan error, 1)
	go func() {
		err := identifyPort(ctx, config, port, d)
		r.mu.Lock()
		delete(r.identifying, port)
		r.mu.Unlock()
		result <- err
	}()
	return result, nil
}

// Identifying reports whether an identify is in progress on port.
func (r *Registry) Identifying(port string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.identifying[port]
	return ok
}

// busy must be called with r.mu held.
func (r *Registry) busy(port string) bool {
	if _, ok := r.identifying[port]; ok {
		return true
	}
	cur, ok := r.runs[port]
	return ok && !cur.finished()
}

// State is the status of the engine on port, if there is one.
func (r *Registry) State(port string) (Status, bool) {
	h, ok := r.lookup(port)
	if !ok {
		return Status{}, false
	}
	return h.engine.State(), true
}

// Engine returns the engine registered on port, running or finished.
func (r *Registry) Engine(port string) (*Engine, bool) {
	h, ok := r.lookup(port)
	if !ok {
		return nil, false
	}
	return h.engine, true
}

// Ports lists the ports with a registered engine, sorted.
func (r *Registry) Ports() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ports := make([]string, 0, len(r.runs))
	for port := range r.runs {
		ports = append(ports, port)
	}
	sort.Strings(ports)
	return ports
}

// StopAll asks every registered engine to stop without waiting.
func (r *Registry) StopAll() {
	for _, h := range r.snapshot() {
		h.engine.Stop()
	}
}

// WaitAll joins every registered engine and returns the first failure. It
// gives up with ctx's error if ctx ends first.
func (r *Registry) WaitAll(ctx context.Context) error {
	var g errgroup.Group
	for _, h := range r.snapshot() {
		h := h
		g.Go(func() error {
			select {
			case <-h.done:
				return h.err
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}
	return g.Wait()
}

func (r *Registry) lookup(port string) (*run, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.runs[port]
	return h, ok
}

func (r *Registry) snapshot() []*run {
	r.mu.Lock()
	defer r.mu.Unlock()

	runs := make([]*run, 0, len(r.runs))
	for _, h := range r.runs {
		runs = append(runs, h)
	}
	return runs
}
