package engine

import (
	"errors"

	"github.com/dshills/wordsmith/internal/engine/reconcile"
)

// Errors returned by session operations.
var (
	// ErrStaleResponse indicates an analyzer batch was computed for a buffer
	// version that is no longer current. The batch is discarded.
	ErrStaleResponse = errors.New("analyzer response is stale")

	// ErrStaleSuggestion indicates an apply request was made against a buffer
	// version that is no longer current.
	ErrStaleSuggestion = reconcile.ErrStaleSuggestion

	// ErrSuggestionNotFound indicates the suggestion is not in the current set.
	ErrSuggestionNotFound = reconcile.ErrSuggestionNotFound

	// ErrVersionConflict indicates an edit was made against an outdated version.
	ErrVersionConflict = errors.New("version conflict")

	// ErrCaretOutOfRange indicates a caret that does not fit the buffer.
	ErrCaretOutOfRange = errors.New("caret out of range")
)
