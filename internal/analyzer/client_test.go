package analyzer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/wordsmith/internal/engine"
	"github.com/dshills/wordsmith/internal/engine/span"
	"github.com/dshills/wordsmith/internal/engine/suggestion"
)

func typo(start, end int) suggestion.Raw {
	return suggestion.Raw{Type: "spelling", Message: "typo", Replacement: "x", Start: start, End: end}
}

type outcomes struct {
	mu  sync.Mutex
	all []Outcome
	ch  chan Outcome
}

func newOutcomes() *outcomes {
	return &outcomes{ch: make(chan Outcome, 16)}
}

func (o *outcomes) observe(out Outcome) {
	o.mu.Lock()
	o.all = append(o.all, out)
	o.mu.Unlock()
	o.ch <- out
}

func (o *outcomes) next(t *testing.T) Outcome {
	t.Helper()
	select {
	case out := <-o.ch:
		return out
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outcome")
		return Outcome{}
	}
}

func TestClientFlushPublishes(t *testing.T) {
	s := engine.New(engine.WithContent("Teh cat sat"))
	a := Func(func(ctx context.Context, text string) ([]suggestion.Raw, error) {
		return []suggestion.Raw{typo(0, 3), typo(5, 50)}, nil
	})
	c := NewClient(a, s)
	defer c.Close()

	out, err := c.Flush(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.State != StateApplying || out.Published != 1 || out.Dropped != 1 {
		t.Errorf("unexpected outcome %+v", out)
	}
	if s.Suggestions().Len() != 1 {
		t.Errorf("expected 1 suggestion, got %d", s.Suggestions().Len())
	}
	if c.State() != StateIdle {
		t.Errorf("expected idle, got %s", c.State())
	}
}

func TestClientDebounceCoalescesChanges(t *testing.T) {
	s := engine.New(engine.WithContent("abc"))
	var calls atomic.Int32
	a := Func(func(ctx context.Context, text string) ([]suggestion.Raw, error) {
		calls.Add(1)
		return []suggestion.Raw{typo(0, 1)}, nil
	})
	obs := newOutcomes()
	c := NewClient(a, s, WithDebounce(40*time.Millisecond), WithObserver(obs.observe))
	defer c.Close()

	for i := 0; i < 5; i++ {
		if _, err := s.Edit(span.New(0, 0), "x"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		c.Notify()
		time.Sleep(5 * time.Millisecond)
	}

	out := obs.next(t)
	if out.State != StateApplying {
		t.Fatalf("expected published batch, got %+v", out)
	}
	if out.Version != 6 {
		t.Errorf("expected analysis of version 6, got %d", out.Version)
	}
	time.Sleep(100 * time.Millisecond)
	if calls.Load() != 1 {
		t.Errorf("expected one analyzer call, got %d", calls.Load())
	}
}

func TestClientEditDuringRequestIsStale(t *testing.T) {
	s := engine.New(engine.WithContent("Teh cat"))
	release := make(chan struct{})
	a := Func(func(ctx context.Context, text string) ([]suggestion.Raw, error) {
		<-release
		return []suggestion.Raw{typo(0, 3)}, nil
	})
	c := NewClient(a, s)
	defer c.Close()

	done := make(chan Outcome, 1)
	go func() {
		out, _ := c.Flush(context.Background())
		done <- out
	}()

	// Wait for the request to be in flight, then edit.
	for c.State() != StatePending {
		time.Sleep(time.Millisecond)
	}
	if _, err := s.Edit(span.New(7, 7), "s"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(release)

	out := <-done
	if out.State != StateStale || !errors.Is(out.Err, ErrStaleResponse) {
		t.Errorf("expected stale outcome, got %+v", out)
	}
	if s.Suggestions().Len() != 0 {
		t.Error("stale batch must not be published")
	}
}

func TestClientSupersededGenerationDropped(t *testing.T) {
	s := engine.New(engine.WithContent("one two"))
	first := make(chan struct{})
	var n atomic.Int32
	a := Func(func(ctx context.Context, text string) ([]suggestion.Raw, error) {
		if n.Add(1) == 1 {
			<-first
			return []suggestion.Raw{typo(0, 3)}, nil
		}
		return []suggestion.Raw{typo(4, 7)}, nil
	})
	obs := newOutcomes()
	c := NewClient(a, s, WithObserver(obs.observe))
	defer c.Close()

	go func() { _, _ = c.Flush(context.Background()) }()
	for n.Load() != 1 {
		time.Sleep(time.Millisecond)
	}

	// Same version, newer generation.
	second, err := c.Flush(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.State != StateApplying || second.Generation != 2 {
		t.Fatalf("unexpected second outcome %+v", second)
	}
	obs.next(t)
	close(first)

	old := obs.next(t)
	if old.Generation != 1 || old.State != StateStale {
		t.Errorf("expected generation 1 dropped as stale, got %+v", old)
	}
	sorted := s.Suggestions().Sorted()
	if len(sorted) != 1 || sorted[0].Span != span.New(4, 7) {
		t.Errorf("expected only the newest batch, got %v", sorted)
	}
}

func TestClientFailureKeepsSuggestions(t *testing.T) {
	s := engine.New(engine.WithContent("Teh cat"))
	if _, err := s.Publish(1, []suggestion.Raw{typo(0, 3)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var calls atomic.Int32
	boom := &TransportError{Op: "request", Status: 503}
	a := Func(func(ctx context.Context, text string) ([]suggestion.Raw, error) {
		calls.Add(1)
		return nil, boom
	})
	c := NewClient(a, s)
	defer c.Close()

	out, err := c.Flush(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.State != StateFailed || !errors.Is(out.Err, ErrTransport) {
		t.Errorf("expected failed outcome, got %+v", out)
	}
	if c.State() != StateFailed {
		t.Errorf("expected failed state, got %s", c.State())
	}
	if s.Suggestions().Len() != 1 {
		t.Error("failure must not clear suggestions")
	}

	time.Sleep(50 * time.Millisecond)
	if calls.Load() != 1 {
		t.Errorf("failed requests must not be retried, got %d calls", calls.Load())
	}
}

func TestClientWhitespaceSkipsAnalyzer(t *testing.T) {
	s := engine.New(engine.WithContent("Teh"))
	if _, err := s.Publish(1, []suggestion.Raw{typo(0, 3)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Reset("  \n\t")

	a := Func(func(ctx context.Context, text string) ([]suggestion.Raw, error) {
		t.Error("analyzer should not be called for blank text")
		return nil, nil
	})
	c := NewClient(a, s)
	defer c.Close()

	out, err := c.Flush(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.State != StateApplying || out.Published != 0 {
		t.Errorf("expected empty batch published, got %+v", out)
	}
}

func TestClientRequestTimeout(t *testing.T) {
	s := engine.New(engine.WithContent("text"))
	a := Func(func(ctx context.Context, text string) ([]suggestion.Raw, error) {
		<-ctx.Done()
		return nil, &TransportError{Op: "request", Err: ctx.Err()}
	})
	c := NewClient(a, s, WithRequestTimeout(20*time.Millisecond))
	defer c.Close()

	out, err := c.Flush(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.State != StateFailed || !errors.Is(out.Err, context.DeadlineExceeded) {
		t.Errorf("expected deadline failure, got %+v", out)
	}
}

func TestClientClose(t *testing.T) {
	s := engine.New(engine.WithContent("text"))
	a := Func(func(ctx context.Context, text string) ([]suggestion.Raw, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	c := NewClient(a, s)

	go func() { _, _ = c.Flush(context.Background()) }()
	for c.State() != StatePending {
		time.Sleep(time.Millisecond)
	}

	c.Close()
	c.Close()

	if _, err := c.Flush(context.Background()); !errors.Is(err, ErrClientClosed) {
		t.Errorf("expected ErrClientClosed, got %v", err)
	}
	c.Notify()
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateIdle:     "idle",
		StatePending:  "pending",
		StateApplying: "applying",
		StateStale:    "stale",
		StateFailed:   "failed",
		State(99):     "unknown",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
