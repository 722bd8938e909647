// Package cursor provides the caret/selection model of an editor session.
//
// Selections use an anchor/focus model where:
//   - Anchor: the position where the selection started
//   - Focus: the current caret position (where typing would occur)
//
// When Anchor == Focus the caret is collapsed. A Caret is an immutable value
// and is always re-derived through Translate when the buffer changes length.
package cursor

import (
	"fmt"

	"github.com/dshills/wordsmith/internal/engine/span"
)

// Caret represents the caret or selection in a buffer version.
type Caret struct {
	Anchor int `json:"anchorOffset"`
	Focus  int `json:"focusOffset"`
}

// New creates a selection from anchor to focus.
func New(anchor, focus int) Caret {
	return Caret{Anchor: anchor, Focus: focus}
}

// Collapsed creates a caret with no selection extent.
func Collapsed(offset int) Caret {
	return Caret{Anchor: offset, Focus: offset}
}

// IsCollapsed returns true if the caret has no selection extent.
func (c Caret) IsCollapsed() bool {
	return c.Anchor == c.Focus
}

// Range returns the selection as a span (always Start <= End).
func (c Caret) Range() span.Span {
	if c.Anchor <= c.Focus {
		return span.New(c.Anchor, c.Focus)
	}
	return span.New(c.Focus, c.Anchor)
}

// IsBackward returns true if the selection extends backward (focus < anchor).
func (c Caret) IsBackward() bool {
	return c.Focus < c.Anchor
}

// Collapse collapses the selection to the focus.
func (c Caret) Collapse() Caret {
	return Caret{Anchor: c.Focus, Focus: c.Focus}
}

// Clamp returns a caret clamped to the valid range [0, maxOffset].
func (c Caret) Clamp(maxOffset int) Caret {
	return Caret{
		Anchor: clamp(c.Anchor, maxOffset),
		Focus:  clamp(c.Focus, maxOffset),
	}
}

// Valid reports whether both ends lie within [0, bufferLen].
func (c Caret) Valid(bufferLen int) bool {
	return c.Anchor >= 0 && c.Anchor <= bufferLen && c.Focus >= 0 && c.Focus <= bufferLen
}

// String returns a string representation of the caret.
func (c Caret) String() string {
	if c.IsCollapsed() {
		return fmt.Sprintf("Caret(%d)", c.Focus)
	}
	dir := "→"
	if c.IsBackward() {
		dir = "←"
	}
	return fmt.Sprintf("Selection(%d%s%d)", c.Anchor, dir, c.Focus)
}

func clamp(offset, maxOffset int) int {
	if offset < 0 {
		return 0
	}
	if offset > maxOffset {
		return maxOffset
	}
	return offset
}
