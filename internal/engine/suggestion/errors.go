package suggestion

import (
	"errors"
	"fmt"

	"github.com/dshills/wordsmith/internal/engine/span"
)

// ErrInvalidSpan indicates an analyzer span does not fit the buffer it claims
// to describe.
var ErrInvalidSpan = errors.New("invalid suggestion span")

// ValidationError describes one analyzer entry dropped from a batch.
type ValidationError struct {
	// Index is the entry's position in the analyzer batch.
	Index int
	// Span is the span the analyzer returned.
	Span span.Span
	// BufferLen is the length of the buffer the span was checked against.
	BufferLen int
	// Version is the buffer version the batch was computed for.
	Version int64
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("suggestion %d: span %s invalid for %d characters at version %d",
		e.Index, e.Span, e.BufferLen, e.Version)
}

// Unwrap returns ErrInvalidSpan.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidSpan
}
