package handbrake

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

var commandContext = exec.CommandContext

// Client defines HandBrake encoding behaviour. Start launches the worker and
// returns a handle carrying the tagged event stream; the final event on the
// stream is always complete or error.
type Client interface {
	Start(ctx context.Context, opts EncodeOptions) (Handle, error)
}

// Handle supervises one running worker process.
type Handle interface {
	// Events yields progress ticks followed by exactly one terminal event.
	// The channel is closed after the terminal event.
	Events() <-chan Event
	// Cancel requests early termination of the worker. Safe to call more
	// than once and after the worker has already finished.
	Cancel()
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if strings.TrimSpace(binary) != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the HandBrakeCLI command-line encoder.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "HandBrakeCLI"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Start launches HandBrakeCLI and begins pumping events.
func (c *CLI) Start(ctx context.Context, opts EncodeOptions) (Handle, error) {
	if strings.TrimSpace(opts.Input) == "" {
		return nil, errors.New("input path required")
	}
	if strings.TrimSpace(opts.Output) == "" {
		return nil, errors.New("output path required")
	}

	runCtx, cancel := context.WithCancel(ctx)
	cmd := commandContext(runCtx, c.binary, opts.Args()...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start handbrake: %w", err)
	}

	handle := &cliHandle{
		events: make(chan Event, 8),
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go func() {
		defer close(handle.events)
		defer cancel()

		workErr, scanErr := scanProgress(stdout, func(p Progress) {
			handle.send(Event{Kind: EventProgress, Progress: p})
		})

		waitErr := cmd.Wait()
		switch {
		case runCtx.Err() != nil:
			handle.send(Event{Kind: EventError, Err: fmt.Errorf("handbrake cancelled: %w", runCtx.Err())})
		case waitErr != nil:
			handle.send(Event{Kind: EventError, Err: fmt.Errorf("handbrake encode failed: %w", waitErr)})
		case scanErr != nil:
			handle.send(Event{Kind: EventError, Err: fmt.Errorf("read handbrake output: %w", scanErr)})
		case workErr != 0:
			handle.send(Event{Kind: EventError, Err: fmt.Errorf("handbrake reported work error %d", workErr)})
		default:
			handle.send(Event{Kind: EventComplete})
		}
	}()

	return handle, nil
}

type cliHandle struct {
	events chan Event
	done   chan struct{}
	once   sync.Once
	cancel context.CancelFunc
}

func (h *cliHandle) Events() <-chan Event {
	return h.events
}

// Cancel kills the worker through context cancellation. The pump goroutine
// observes the cancelled context and emits a terminal error event; send never
// blocks on a consumer that has stopped reading.
func (h *cliHandle) Cancel() {
	h.once.Do(func() { close(h.done) })
	h.cancel()
}

func (h *cliHandle) send(event Event) {
	select {
	case h.events <- event:
	case <-h.done:
	}
}

var _ Client = (*CLI)(nil)
