package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/wordsmith/internal/analyzer"
	"github.com/dshills/wordsmith/internal/engine"
	"github.com/dshills/wordsmith/internal/engine/projector"
	"github.com/dshills/wordsmith/internal/notify"
	"github.com/dshills/wordsmith/internal/store"
)

// Session is an open document: the editing engine, the analyzer client that
// keeps its suggestions current and the link to the stored document.
//
// Saves are local-first. A failed save never rolls back the buffer; the
// session is marked local-only until a later save succeeds.
type Session struct {
	id         string
	documentID string
	title      string

	app    *Application
	doc    *engine.Session
	client *analyzer.Client
	logger *slog.Logger

	saveMu       sync.Mutex
	savedVersion int64
	localOnly    atomic.Bool
}

// View is a session's state as presented to clients.
type View struct {
	ID         string `json:"id"`
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
	LocalOnly  bool   `json:"localOnly"`
	Analyzer   string `json:"analyzer"`
	engine.Snapshot
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// DocumentID returns the id of the stored document.
func (s *Session) DocumentID() string { return s.documentID }

// LocalOnly reports whether the latest content failed to save.
func (s *Session) LocalOnly() bool { return s.localOnly.Load() }

// AnalyzerState returns the analyzer client's state.
func (s *Session) AnalyzerState() analyzer.State { return s.client.State() }

// Current implements analyzer.Target.
func (s *Session) Current() (string, int64) {
	return s.doc.Current()
}

// Publish implements analyzer.Target. An accepted batch triggers a save of
// the analyzed content.
func (s *Session) Publish(version int64, raw []engine.Raw) (engine.PublishResult, error) {
	res, err := s.doc.Publish(version, raw)
	if err != nil {
		return res, err
	}
	_ = s.persist(context.Background())
	return res, nil
}

// View returns a consistent copy of the session state.
func (s *Session) View() View {
	title := s.title
	if title == "" {
		title = store.DefaultTitle
	}
	return View{
		ID:         s.id,
		DocumentID: s.documentID,
		Title:      title,
		LocalOnly:  s.LocalOnly(),
		Analyzer:   s.client.State().String(),
		Snapshot:   s.doc.Snapshot(),
	}
}

// Snapshot returns the engine snapshot.
func (s *Session) Snapshot() engine.Snapshot {
	return s.doc.Snapshot()
}

// Project returns the render projection of the current version.
func (s *Session) Project() *projector.Projection {
	return s.doc.Project()
}

// Edit replaces edit with text. A positive expectedVersion guards the edit
// against concurrent changes. The analyzer is notified of the change.
func (s *Session) Edit(expectedVersion int64, edit engine.Span, text string) (engine.EditResult, error) {
	var (
		res engine.EditResult
		err error
	)
	if expectedVersion > 0 {
		res, err = s.doc.EditAt(expectedVersion, edit, text)
	} else {
		res, err = s.doc.Edit(edit, text)
	}
	if err != nil {
		return res, NewOperationError("edit", s.id, err)
	}

	s.app.metrics.RecordInvalidated(len(res.Dropped))
	s.client.Notify()
	return res, nil
}

// Apply applies suggestion id. expectedVersion is the version the suggestion
// was shown at.
func (s *Session) Apply(ctx context.Context, id uuid.UUID, expectedVersion int64) (engine.ApplyResult, error) {
	res, err := s.doc.ApplySuggestion(id, expectedVersion)
	if errors.Is(err, engine.ErrStaleSuggestion) {
		s.app.metrics.RecordStaleApply()
		s.notify(notify.KindStaleSuggestion, expectedVersion,
			"The text changed since this suggestion was made. Wait for fresh suggestions.")
		return res, NewOperationError("apply", id.String(), err)
	}
	if err != nil {
		return res, NewOperationError("apply", id.String(), err)
	}

	s.logger.Debug("suggestion applied", "suggestion", id, "version", res.Version, "invalidated", len(res.Dropped))
	s.app.metrics.RecordApplied(len(res.Dropped))
	_ = s.persist(ctx)
	s.client.Notify()
	return res, nil
}

// Dismiss removes suggestion id. It reports whether it was present.
func (s *Session) Dismiss(id uuid.UUID) bool {
	if !s.doc.Dismiss(id) {
		return false
	}
	s.app.metrics.RecordDismissed()
	return true
}

// SetCaret moves the caret.
func (s *Session) SetCaret(c engine.Caret) error {
	if err := s.doc.SetCaret(c); err != nil {
		return NewOperationError("caret", s.id, err)
	}
	return nil
}

// Analyze runs the analyzer now and waits for the outcome.
func (s *Session) Analyze(ctx context.Context) (analyzer.Outcome, error) {
	return s.client.Flush(ctx)
}

// Save writes the current content to the store.
func (s *Session) Save(ctx context.Context) error {
	return s.persist(ctx)
}

// persist saves the current content unless it is already stored.
// Saves are serialized so an older version never overwrites a newer one.
func (s *Session) persist(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	text, version := s.doc.Current()
	if version == s.savedVersion && !s.localOnly.Load() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	var opts []store.SaveOption
	if s.title != "" {
		opts = append(opts, store.WithTitle(s.title))
	}
	if _, err := s.app.store.Save(ctx, s.documentID, text, opts...); err != nil {
		s.localOnly.Store(true)
		s.app.metrics.RecordPersistenceFailure()
		s.logger.Warn("save failed, keeping changes locally", "document", s.documentID, "version", version, "error", err)
		s.notify(notify.KindPersistenceFailed, version, "Your changes could not be saved. They are kept in this session.")
		return NewOperationError("save", s.documentID, err)
	}

	s.savedVersion = version
	if s.localOnly.Swap(false) {
		s.logger.Info("save recovered", "document", s.documentID, "version", version)
	}
	return nil
}

func (s *Session) observe(out analyzer.Outcome) {
	s.app.metrics.ObserveOutcome(out)

	switch out.State {
	case analyzer.StateApplying:
		s.notify(notify.KindSuggestionsUpdated, out.Version, fmt.Sprintf("%d suggestions", out.Published))
	case analyzer.StateFailed:
		if errors.Is(out.Err, analyzer.ErrContract) {
			s.notify(notify.KindContractError, out.Version, "The analyzer returned a response that could not be used.")
			return
		}
		s.notify(notify.KindAnalysisFailed, out.Version, "Failed to analyze text")
	}
}

func (s *Session) notify(kind notify.Kind, version int64, msg string) {
	s.app.notifier.Notify(notify.Notification{
		Topic:   s.id,
		Kind:    kind,
		Message: msg,
		Version: version,
	})
}

// close stops analysis and saves the final content.
func (s *Session) close(ctx context.Context) error {
	s.client.Close()
	err := s.persist(ctx)
	s.app.notifier.Forget(s.id)
	return err
}
