// Package span implements half-open character spans over a text buffer and
// the offset arithmetic used whenever the buffer is rewritten.
//
// Offsets are counted in runes. A Span is only meaningful against the buffer
// version it was computed for; translating it across an edit is the job of
// TranslateAfterReplacement.
package span

import (
	"cmp"
	"fmt"
)

// Span represents a character range in a buffer.
// Start is inclusive, End is exclusive: [Start, End).
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// New creates a Span from start and end offsets.
func New(start, end int) Span {
	return Span{Start: start, End: end}
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	return fmt.Sprintf("[%d:%d)", s.Start, s.End)
}

// Len returns the number of characters covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// IsEmpty returns true if the span covers no characters.
func (s Span) IsEmpty() bool {
	return s.Start == s.End
}

// Contains returns true if offset lies within the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Shift returns the span moved by delta characters.
func (s Span) Shift(delta int) Span {
	return Span{Start: s.Start + delta, End: s.End + delta}
}

// Validate reports whether s is a valid span over a buffer of bufferLen
// characters: 0 <= Start <= End <= bufferLen.
func Validate(s Span, bufferLen int) bool {
	return s.Start >= 0 && s.Start <= s.End && s.End <= bufferLen
}

// Overlaps reports whether two half-open spans intersect.
func Overlaps(a, b Span) bool {
	return a.Start < b.End && b.Start < a.End
}

// TranslateAfterReplacement computes where s lands after the characters in
// edit were replaced by replacementLen characters.
//
// Translation rules:
//   - s ends at or before edit.Start: unchanged
//   - s starts at or after edit.End: shifted by the edit's delta
//   - otherwise s intersects the edit and is invalidated (ok == false)
func TranslateAfterReplacement(s, edit Span, replacementLen int) (Span, bool) {
	if s.End <= edit.Start {
		return s, true
	}
	if s.Start >= edit.End {
		return s.Shift(replacementLen - edit.Len()), true
	}
	return Span{}, false
}

// TranslateCaret updates a caret offset after the characters in edit were
// replaced by replacementLen characters.
//
// Translation rules:
//   - edit ends at or before offset: shift by the edit's delta
//   - edit starts at or after offset: unchanged
//   - offset strictly inside edit: move to the end of the replacement
//
// An insertion exactly at the caret therefore moves the caret past the
// inserted text.
func TranslateCaret(offset int, edit Span, replacementLen int) int {
	if edit.End <= offset {
		return offset + replacementLen - edit.Len()
	}
	if edit.Start >= offset {
		return offset
	}
	return edit.Start + replacementLen
}

// Delta returns the change in buffer length caused by replacing edit with
// replacementLen characters.
func Delta(edit Span, replacementLen int) int {
	return replacementLen - edit.Len()
}

// Compare orders spans for rendering: Start ascending, ties broken by End
// descending so an outer span sorts before the inner span it encloses.
func Compare(a, b Span) int {
	if c := cmp.Compare(a.Start, b.Start); c != 0 {
		return c
	}
	return cmp.Compare(b.End, a.End)
}
