// Package projector turns a buffer and its suggestion set into an ordered
// sequence of segments for display, and maps caret offsets between the flat
// buffer and that segmented view.
package projector

import (
	"errors"
	"fmt"
	"iter"

	"github.com/google/uuid"

	"github.com/dshills/wordsmith/internal/engine/buffer"
	"github.com/dshills/wordsmith/internal/engine/span"
	"github.com/dshills/wordsmith/internal/engine/suggestion"
)

// ErrOutOfRange indicates an offset or position that does not map into the
// projection.
var ErrOutOfRange = errors.New("position out of range")

// Decoration marks a segment as covered by a suggestion.
type Decoration struct {
	SuggestionID uuid.UUID       `json:"suggestionId"`
	Kind         suggestion.Kind `json:"kind"`
	Message      string          `json:"message,omitempty"`
}

// Segment is a contiguous run of buffer text.
// Decoration is nil for plain text.
type Segment struct {
	Span       span.Span   `json:"span"`
	Text       string      `json:"text"`
	Decoration *Decoration `json:"decoration,omitempty"`
}

// Position addresses a caret inside the segmented view.
type Position struct {
	Segment int `json:"segment"`
	Offset  int `json:"offset"`
}

// Projection is the render view of one buffer version.
type Projection struct {
	buf        *buffer.Buffer
	accepted   []suggestion.Suggestion
	suppressed []uuid.UUID
	bounds     []span.Span
}

// Project computes the projection of buf decorated with set.
//
// Suggestions are visited in render order and accepted greedily: a span is
// accepted only if it overlaps no span accepted before it. Zero-width spans
// cover no characters and are always suppressed. Suppressed suggestions stay
// in the set; only this projection ignores them.
func Project(buf *buffer.Buffer, set *suggestion.Set) *Projection {
	p := &Projection{buf: buf}

	for _, sg := range set.Sorted() {
		if sg.Span.IsEmpty() || !span.Validate(sg.Span, buf.Len()) || p.collides(sg.Span) {
			p.suppressed = append(p.suppressed, sg.ID)
			continue
		}
		p.accepted = append(p.accepted, sg)
	}

	p.bounds = p.layout()
	return p
}

// collides checks s against the accepted spans. Accepted spans arrive in
// Start order, so only the last one can reach s.
func (p *Projection) collides(s span.Span) bool {
	if len(p.accepted) == 0 {
		return false
	}
	return span.Overlaps(p.accepted[len(p.accepted)-1].Span, s)
}

func (p *Projection) layout() []span.Span {
	var bounds []span.Span
	pos := 0
	for _, sg := range p.accepted {
		if sg.Span.Start > pos {
			bounds = append(bounds, span.New(pos, sg.Span.Start))
		}
		bounds = append(bounds, sg.Span)
		pos = sg.Span.End
	}
	if pos < p.buf.Len() {
		bounds = append(bounds, span.New(pos, p.buf.Len()))
	}
	return bounds
}

// Version returns the buffer version the projection was computed for.
func (p *Projection) Version() int64 {
	return p.buf.Version()
}

// Len returns the number of segments.
func (p *Projection) Len() int {
	return len(p.bounds)
}

// Segments returns the segments in buffer order. The sequence is computed
// lazily and may be iterated any number of times.
func (p *Projection) Segments() iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		next := 0
		for _, b := range p.bounds {
			seg := Segment{Span: b}
			seg.Text, _ = p.buf.Slice(b)
			if next < len(p.accepted) && p.accepted[next].Span == b {
				sg := p.accepted[next]
				seg.Decoration = &Decoration{SuggestionID: sg.ID, Kind: sg.Kind, Message: sg.Message}
				next++
			}
			if !yield(seg) {
				return
			}
		}
	}
}

// Collect returns all segments as a slice.
func (p *Projection) Collect() []Segment {
	out := make([]Segment, 0, len(p.bounds))
	for seg := range p.Segments() {
		out = append(out, seg)
	}
	return out
}

// Accepted returns the ids of decorated suggestions in render order.
func (p *Projection) Accepted() []uuid.UUID {
	ids := make([]uuid.UUID, len(p.accepted))
	for i, sg := range p.accepted {
		ids[i] = sg.ID
	}
	return ids
}

// Suppressed returns the ids of suggestions left undecorated in this pass.
func (p *Projection) Suppressed() []uuid.UUID {
	return append([]uuid.UUID(nil), p.suppressed...)
}

// Locate maps an absolute buffer offset to a position in the segmented view.
// An offset on a boundary belongs to the segment that starts there; the
// buffer end belongs to the last segment.
func (p *Projection) Locate(offset int) (Position, error) {
	if offset < 0 || offset > p.buf.Len() {
		return Position{}, fmt.Errorf("locate %d of %d: %w", offset, p.buf.Len(), ErrOutOfRange)
	}
	if len(p.bounds) == 0 {
		return Position{}, nil
	}

	for i, b := range p.bounds {
		if b.Contains(offset) {
			return Position{Segment: i, Offset: offset - b.Start}, nil
		}
	}
	last := len(p.bounds) - 1
	return Position{Segment: last, Offset: offset - p.bounds[last].Start}, nil
}

// Resolve maps a position in the segmented view back to a buffer offset.
func (p *Projection) Resolve(pos Position) (int, error) {
	if len(p.bounds) == 0 && pos == (Position{}) {
		return 0, nil
	}
	if pos.Segment < 0 || pos.Segment >= len(p.bounds) {
		return 0, fmt.Errorf("resolve segment %d of %d: %w", pos.Segment, len(p.bounds), ErrOutOfRange)
	}
	b := p.bounds[pos.Segment]
	if pos.Offset < 0 || pos.Offset > b.Len() {
		return 0, fmt.Errorf("resolve offset %d in %s: %w", pos.Offset, b, ErrOutOfRange)
	}
	return b.Start + pos.Offset, nil
}
