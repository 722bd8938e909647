package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/wordsmith/internal/engine/buffer"
	"github.com/dshills/wordsmith/internal/engine/cursor"
	"github.com/dshills/wordsmith/internal/engine/projector"
	"github.com/dshills/wordsmith/internal/engine/reconcile"
	"github.com/dshills/wordsmith/internal/engine/span"
	"github.com/dshills/wordsmith/internal/engine/suggestion"
)

// Re-export commonly used types for convenience.
type (
	// Span is a half-open character range.
	Span = span.Span

	// Caret is the caret or selection.
	Caret = cursor.Caret

	// Suggestion is a validated analyzer suggestion.
	Suggestion = suggestion.Suggestion

	// Raw is an unvalidated analyzer suggestion.
	Raw = suggestion.Raw

	// Stats are document statistics.
	Stats = buffer.Stats

	// EditResult describes the effect of an edit on the suggestion set.
	EditResult = reconcile.Result
)

// Annotated is a suggestion with its surrounding text.
type Annotated struct {
	suggestion.Suggestion
	Context string `json:"context"`
}

// Snapshot is a consistent copy of a session's state at one version.
type Snapshot struct {
	Version     int64        `json:"version"`
	Text        string       `json:"text"`
	Caret       cursor.Caret `json:"caret"`
	Stats       buffer.Stats `json:"stats"`
	Suggestions []Annotated  `json:"suggestions"`
}

// PublishResult describes an accepted analyzer batch.
type PublishResult struct {
	Version   int64
	Published int
	// Diagnostics holds one *suggestion.ValidationError per dropped entry.
	Diagnostics []error
}

// ApplyResult describes an applied suggestion.
type ApplyResult struct {
	reconcile.Result
	Version int64
	Caret   cursor.Caret
}

// Session is one document being edited.
// It exclusively owns the buffer, suggestion set and caret.
//
// All operations are thread-safe and can be called from multiple goroutines.
type Session struct {
	mu sync.RWMutex

	state reconcile.State

	logger        *slog.Logger
	contextRadius int

	// Initialization
	initContent string
	initVersion int64
	initCaret   cursor.Caret
}

// New creates a new Session with the given options.
func New(opts ...Option) *Session {
	s := &Session{
		logger:        slog.New(slog.DiscardHandler),
		contextRadius: DefaultContextRadius,
		initVersion:   buffer.InitialVersion,
	}

	for _, opt := range opts {
		opt(s)
	}

	buf := buffer.NewAt(s.initContent, s.initVersion)
	s.state = reconcile.State{
		Buffer:      buf,
		Suggestions: suggestion.Empty(buf.Version()),
		Caret:       s.initCaret.Clamp(buf.Len()),
	}
	return s
}

// ============================================================================
// Read Operations
// ============================================================================

// Text returns the current buffer content.
func (s *Session) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Buffer.Text()
}

// Version returns the current buffer version.
func (s *Session) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Buffer.Version()
}

// Current returns the text and version as one consistent pair.
func (s *Session) Current() (string, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Buffer.Text(), s.state.Buffer.Version()
}

// Caret returns the current caret.
func (s *Session) Caret() cursor.Caret {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Caret
}

// Suggestions returns the current suggestion set.
// The set is immutable and stays valid after later edits.
func (s *Session) Suggestions() *suggestion.Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Suggestions
}

// State returns the current state. Its parts are immutable.
func (s *Session) State() reconcile.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Snapshot returns a consistent copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	st := s.state
	s.mu.RUnlock()

	sorted := st.Suggestions.Sorted()
	annotated := make([]Annotated, len(sorted))
	for i, sg := range sorted {
		annotated[i] = Annotated{
			Suggestion: sg,
			Context:    st.Buffer.Excerpt(sg.Span, s.contextRadius),
		}
	}

	return Snapshot{
		Version:     st.Buffer.Version(),
		Text:        st.Buffer.Text(),
		Caret:       st.Caret,
		Stats:       st.Buffer.Stats(),
		Suggestions: annotated,
	}
}

// Project returns the render projection of the current version.
func (s *Session) Project() *projector.Projection {
	s.mu.RLock()
	st := s.state
	s.mu.RUnlock()
	return projector.Project(st.Buffer, st.Suggestions)
}

// ============================================================================
// Write Operations
// ============================================================================

// Publish installs an analyzer batch computed for version.
//
// A batch for any version other than the current one fails with
// ErrStaleResponse and leaves the set untouched. Otherwise the batch replaces
// the whole set; invalid entries are dropped, logged and returned as
// diagnostics.
func (s *Session) Publish(version int64, raw []suggestion.Raw) (PublishResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.state.Buffer.Version()
	if version != current {
		s.logger.Debug("discarding stale analyzer batch",
			"batch_version", version,
			"current_version", current,
			"suggestions", len(raw),
		)
		return PublishResult{}, fmt.Errorf("publish version %d at version %d: %w", version, current, ErrStaleResponse)
	}

	set, diags := suggestion.ReplaceAll(s.state.Buffer.Len(), current, raw)
	for _, d := range diags {
		s.logger.Warn("dropped invalid suggestion", "version", current, "error", d)
	}
	s.state.Suggestions = set

	return PublishResult{Version: current, Published: set.Len(), Diagnostics: diags}, nil
}

// ApplySuggestion applies suggestion id to the buffer. expectedVersion is the
// version the caller saw the suggestion at; if the buffer has moved on the
// request fails with ErrStaleSuggestion and nothing changes.
func (s *Session) ApplySuggestion(id uuid.UUID, expectedVersion int64) (ApplyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.state.Buffer.Version()
	if expectedVersion != current {
		return ApplyResult{}, fmt.Errorf("apply %s at version %d, current %d: %w",
			id, expectedVersion, current, ErrStaleSuggestion)
	}

	next, res, err := reconcile.ApplySuggestion(s.state, id)
	if err != nil {
		return ApplyResult{}, err
	}
	s.state = next

	if len(res.Dropped) > 0 {
		s.logger.Debug("suggestions invalidated by apply", "version", next.Buffer.Version(), "dropped", len(res.Dropped))
	}
	return ApplyResult{Result: res, Version: next.Buffer.Version(), Caret: next.Caret}, nil
}

// Dismiss removes a suggestion without touching the buffer.
// It reports whether the suggestion was present.
func (s *Session) Dismiss(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.Suggestions.Get(id); !ok {
		return false
	}
	s.state.Suggestions = s.state.Suggestions.Remove(id)
	return true
}

// Edit replaces the text in edit with text and carries the suggestions and
// caret across the change.
func (s *Session) Edit(edit span.Span, text string) (EditResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editLocked(edit, text)
}

// EditAt is Edit guarded by the version the caller computed edit against.
func (s *Session) EditAt(expectedVersion int64, edit span.Span, text string) (EditResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current := s.state.Buffer.Version(); expectedVersion != current {
		return EditResult{}, fmt.Errorf("edit at version %d, current %d: %w", expectedVersion, current, ErrVersionConflict)
	}
	return s.editLocked(edit, text)
}

func (s *Session) editLocked(edit span.Span, text string) (EditResult, error) {
	next, res, err := reconcile.ApplyEdit(s.state, edit, text)
	if err != nil {
		return EditResult{}, err
	}
	s.state = next
	return res, nil
}

// SetCaret moves the caret.
func (s *Session) SetCaret(c cursor.Caret) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !c.Valid(s.state.Buffer.Len()) {
		return fmt.Errorf("caret %s in %d characters: %w", c, s.state.Buffer.Len(), ErrCaretOutOfRange)
	}
	s.state.Caret = c
	return nil
}

// Reset replaces the whole content, for example after an external reload.
// The suggestion set is discarded rather than translated. It returns the new
// version.
func (s *Session) Reset(text string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := buffer.NewAt(text, s.state.Buffer.Version()+1)
	s.state = reconcile.State{
		Buffer:      buf,
		Suggestions: suggestion.Empty(buf.Version()),
		Caret:       s.state.Caret.Clamp(buf.Len()),
	}
	return buf.Version()
}
