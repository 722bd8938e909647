// Package reconcile applies edits to a buffer while keeping the suggestion
// set and caret positionally consistent with the rewritten text.
//
// Every operation is a pure transformation from one State to the next. The
// input State is never modified, so a failed operation leaves the caller
// holding exactly what it had before.
package reconcile

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dshills/wordsmith/internal/engine/buffer"
	"github.com/dshills/wordsmith/internal/engine/cursor"
	"github.com/dshills/wordsmith/internal/engine/span"
	"github.com/dshills/wordsmith/internal/engine/suggestion"
)

var (
	// ErrStaleSuggestion indicates the suggestion set was computed for a
	// different buffer version than the one being edited.
	ErrStaleSuggestion = errors.New("suggestion set is stale")

	// ErrSuggestionNotFound indicates the requested suggestion is not in the set.
	ErrSuggestionNotFound = errors.New("suggestion not found")
)

// State is the buffer, suggestion set and caret of one editing session.
type State struct {
	Buffer      *buffer.Buffer
	Suggestions *suggestion.Set
	Caret       cursor.Caret
}

// Result describes what an operation did to the suggestion set.
type Result struct {
	// Edit is the replaced region in the previous buffer version.
	Edit span.Span
	// ReplacementLen is the number of characters inserted in place of Edit.
	ReplacementLen int
	// Removed lists suggestions removed because they were applied.
	Removed []uuid.UUID
	// Dropped lists suggestions invalidated by the edit.
	Dropped []uuid.UUID
}

// Consistent reports whether the suggestion set belongs to the buffer version.
func (st State) Consistent() bool {
	return st.Buffer != nil && st.Suggestions != nil &&
		st.Suggestions.Version() == st.Buffer.Version()
}

// ApplySuggestion replaces the text covered by suggestion id with its
// replacement, removes it from the set, translates the remaining suggestions
// and the caret, and returns the resulting State.
//
// A set whose version differs from the buffer's fails with
// ErrStaleSuggestion and nothing changes.
func ApplySuggestion(st State, id uuid.UUID) (State, Result, error) {
	if !st.Consistent() {
		return st, Result{}, fmt.Errorf("apply %s: %w", id, ErrStaleSuggestion)
	}

	sg, ok := st.Suggestions.Get(id)
	if !ok {
		return st, Result{}, fmt.Errorf("apply %s: %w", id, ErrSuggestionNotFound)
	}
	if !span.Validate(sg.Span, st.Buffer.Len()) {
		return st, Result{}, fmt.Errorf("apply %s at %s: %w", id, sg.Span, suggestion.ErrInvalidSpan)
	}

	next, res, err := replace(st, st.Suggestions.Remove(id), sg.Span, sg.Replacement)
	if err != nil {
		return st, Result{}, fmt.Errorf("apply %s: %w", id, err)
	}
	res.Removed = []uuid.UUID{id}
	return next, res, nil
}

// ApplyEdit replaces the text covered by edit with text, as typing, deleting
// or pasting does, and translates the suggestions and caret across it.
func ApplyEdit(st State, edit span.Span, text string) (State, Result, error) {
	if !st.Consistent() {
		return st, Result{}, fmt.Errorf("edit %s: %w", edit, ErrStaleSuggestion)
	}

	next, res, err := replace(st, st.Suggestions, edit, text)
	if err != nil {
		return st, Result{}, fmt.Errorf("edit %s: %w", edit, err)
	}
	return next, res, nil
}

func replace(st State, set *suggestion.Set, edit span.Span, text string) (State, Result, error) {
	buf, err := st.Buffer.Replace(edit, text)
	if err != nil {
		return st, Result{}, err
	}

	n := utf8.RuneCountInString(text)
	translated, dropped := set.Translate(edit, n)

	next := State{
		Buffer:      buf,
		Suggestions: translated,
		Caret:       cursor.Translate(st.Caret, edit, n).Clamp(buf.Len()),
	}
	return next, Result{Edit: edit, ReplacementLen: n, Dropped: dropped}, nil
}
