package cursor

import "github.com/dshills/wordsmith/internal/engine/span"

// Translate updates a caret after the characters in edit were replaced by
// replacementLen characters.
//
// Anchor and focus are translated independently with span.TranslateCaret.
// A selection keeps its extent only while both ends were outside the
// replaced region; if either end was strictly inside it, the selection
// collapses to the translated focus.
func Translate(c Caret, edit span.Span, replacementLen int) Caret {
	next := Caret{
		Anchor: span.TranslateCaret(c.Anchor, edit, replacementLen),
		Focus:  span.TranslateCaret(c.Focus, edit, replacementLen),
	}
	if c.IsCollapsed() {
		return next
	}
	if strictlyInside(c.Anchor, edit) || strictlyInside(c.Focus, edit) {
		return next.Collapse()
	}
	return next
}

func strictlyInside(offset int, edit span.Span) bool {
	return offset > edit.Start && offset < edit.End
}
