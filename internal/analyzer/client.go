package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dshills/wordsmith/internal/engine"
	"github.com/dshills/wordsmith/internal/engine/suggestion"
)

// ErrStaleResponse is reported for responses that arrived after the text
// they describe was superseded.
var ErrStaleResponse = engine.ErrStaleResponse

// State is the request lifecycle state of a Client.
type State int

const (
	// StateIdle means no request is outstanding.
	StateIdle State = iota
	// StatePending means a request is in flight.
	StatePending
	// StateApplying means a response is being published.
	StateApplying
	// StateStale means the last response was dropped as outdated.
	StateStale
	// StateFailed means the last request failed. Existing suggestions are kept.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateApplying:
		return "applying"
	case StateStale:
		return "stale"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Target is the session a Client keeps analyzed.
type Target interface {
	// Current returns the text and version to analyze as one consistent pair.
	Current() (text string, version int64)
	// Publish installs a batch computed for version.
	Publish(version int64, raw []suggestion.Raw) (engine.PublishResult, error)
}

// Outcome describes how one analysis request resolved.
// State is StateApplying for a published batch.
type Outcome struct {
	State      State
	Version    int64
	Generation uint64
	Err        error
	Published  int
	Dropped    int
	Latency    time.Duration
}

// Observer receives every Outcome. Observers run on the request goroutine
// and must not block.
type Observer func(Outcome)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithRequestTimeout bounds each analyzer call. Zero means no bound beyond
// the analyzer's own.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithClientLogger sets the logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers an observer.
func WithObserver(o Observer) ClientOption {
	return func(c *Client) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// Client keeps a Target's suggestions in step with its text.
//
// Every text change restarts the debounce window. When the window elapses
// the Client snapshots the target, supersedes any request still in flight
// and asks the analyzer. A response is published only if it belongs to the
// newest request and its version is still current; anything else is dropped
// as stale. A failure is reported to observers and leaves the existing
// suggestions in place. Failed requests are not retried; the next change
// triggers a new one.
type Client struct {
	mu sync.Mutex

	analyzer  Analyzer
	target    Target
	debouncer *Debouncer
	debounce  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
	observers []Observer

	state      State
	generation uint64
	inflight   context.CancelFunc
	closed     bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClient creates a Client that analyzes target with a.
func NewClient(a Analyzer, target Target, opts ...ClientOption) *Client {
	c := &Client{
		analyzer: a,
		target:   target,
		debounce: DefaultDebounce,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.debouncer = NewDebouncer(c.debounce, c.fire)
	return c
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Generation returns the number of requests started so far.
func (c *Client) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// SetDebounce changes the quiet period for subsequent changes.
func (c *Client) SetDebounce(d time.Duration) {
	c.debouncer.SetDelay(d)
}

// Notify records a text change and restarts the debounce window.
func (c *Client) Notify() {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}
	c.debouncer.Call()
}

// Flush cancels the debounce window, analyzes the current text right away
// and waits for the outcome.
func (c *Client) Flush(ctx context.Context) (Outcome, error) {
	c.debouncer.Cancel()

	done := make(chan Outcome, 1)
	if err := c.start(done); err != nil {
		return Outcome{}, err
	}

	select {
	case out := <-done:
		return out, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Close stops the debounce timer, cancels any request in flight and waits
// for it to resolve. Close is idempotent.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.debouncer.Cancel()
	c.cancel()
	c.wg.Wait()
}

func (c *Client) fire() {
	if err := c.start(nil); err != nil {
		c.logger.Debug("analysis not started", "error", err)
	}
}

func (c *Client) start(done chan<- Outcome) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClientClosed
	}

	if c.inflight != nil {
		c.inflight()
	}
	c.generation++
	gen := c.generation
	text, version := c.target.Current()
	c.state = StatePending

	ctx, cancel := c.requestContext()
	c.inflight = cancel
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		defer cancel()
		c.run(ctx, gen, text, version, done)
	}()
	return nil
}

func (c *Client) requestContext() (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(c.ctx, c.timeout)
	}
	return context.WithCancel(c.ctx)
}

func (c *Client) run(ctx context.Context, gen uint64, text string, version int64, done chan<- Outcome) {
	started := time.Now()

	var raw []suggestion.Raw
	var err error
	if strings.TrimSpace(text) != "" {
		raw, err = c.analyzer.Analyze(ctx, text)
	}

	out := c.resolve(gen, version, raw, err)
	out.Latency = time.Since(started)

	for _, o := range c.observers {
		o(out)
	}
	if done != nil {
		done <- out
	}
}

func (c *Client) resolve(gen uint64, version int64, raw []suggestion.Raw, err error) Outcome {
	out := Outcome{Version: version, Generation: gen}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.logger.Debug("dropping superseded response", "generation", gen, "version", version)
		out.State, out.Err = StateStale, ErrStaleResponse
		return out
	}
	c.inflight = nil

	if err != nil {
		c.state = StateFailed
		c.mu.Unlock()
		c.logger.Warn("analysis failed", "version", version, "error", err)
		out.State, out.Err = StateFailed, err
		return out
	}
	c.state = StateApplying
	c.mu.Unlock()

	res, perr := c.target.Publish(version, raw)
	switch {
	case errors.Is(perr, ErrStaleResponse):
		c.setState(gen, StateStale)
		out.State, out.Err = StateStale, perr
	case perr != nil:
		c.setState(gen, StateFailed)
		c.logger.Warn("publish failed", "version", version, "error", perr)
		out.State, out.Err = StateFailed, perr
	default:
		c.setState(gen, StateIdle)
		out.State = StateApplying
		out.Published = res.Published
		out.Dropped = len(res.Diagnostics)
	}
	return out
}

// setState updates the state unless a newer request has started.
func (c *Client) setState(gen uint64, s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.generation {
		c.state = s
	}
}
