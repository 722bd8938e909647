package suggestion

import (
	"bytes"
	"slices"

	"github.com/google/uuid"

	"github.com/dshills/wordsmith/internal/engine/span"
)

// Set is an immutable collection of suggestions valid for exactly one buffer
// version. Every operation returns a new Set; the receiver is never modified.
type Set struct {
	version int64
	items   map[uuid.UUID]Suggestion
}

// Empty returns a set with no suggestions tagged with version.
func Empty(version int64) *Set {
	return &Set{version: version, items: map[uuid.UUID]Suggestion{}}
}

// ReplaceAll builds a new set for a buffer of bufferLen characters at version
// from an analyzer batch. Entries whose span fails span.Validate are dropped,
// never clamped, and reported as *ValidationError diagnostics. Every
// surviving entry receives a fresh id.
func ReplaceAll(bufferLen int, version int64, raw []Raw) (*Set, []error) {
	set := &Set{version: version, items: make(map[uuid.UUID]Suggestion, len(raw))}

	var diagnostics []error
	for i, r := range raw {
		s := r.Span()
		if !span.Validate(s, bufferLen) {
			diagnostics = append(diagnostics, &ValidationError{
				Index:     i,
				Span:      s,
				BufferLen: bufferLen,
				Version:   version,
			})
			continue
		}

		id := uuid.New()
		set.items[id] = Suggestion{
			ID:          id,
			Kind:        ParseKind(r.Type),
			Message:     r.Message,
			Replacement: r.Replacement,
			Span:        s,
		}
	}

	return set, diagnostics
}

// Version returns the buffer version the set is valid for.
func (s *Set) Version() int64 {
	return s.version
}

// Len returns the number of suggestions.
func (s *Set) Len() int {
	return len(s.items)
}

// Get looks up a suggestion by id.
func (s *Set) Get(id uuid.UUID) (Suggestion, bool) {
	sg, ok := s.items[id]
	return sg, ok
}

// Remove returns a set without the given suggestion.
// Removing an absent id returns the receiver unchanged.
func (s *Set) Remove(id uuid.UUID) *Set {
	if _, ok := s.items[id]; !ok {
		return s
	}

	items := make(map[uuid.UUID]Suggestion, len(s.items)-1)
	for k, v := range s.items {
		if k != id {
			items[k] = v
		}
	}
	return &Set{version: s.version, items: items}
}

// TranslateAll moves every suggestion across an edit that replaced the
// characters in edit with replacementLen characters. Suggestions whose span
// intersects the edit are dropped. The result is tagged with the next
// buffer version.
func (s *Set) TranslateAll(edit span.Span, replacementLen int) *Set {
	next, _ := s.Translate(edit, replacementLen)
	return next
}

// Translate is TranslateAll that also reports the ids of dropped suggestions.
func (s *Set) Translate(edit span.Span, replacementLen int) (*Set, []uuid.UUID) {
	items := make(map[uuid.UUID]Suggestion, len(s.items))

	var dropped []uuid.UUID
	for id, sg := range s.items {
		moved, ok := span.TranslateAfterReplacement(sg.Span, edit, replacementLen)
		if !ok {
			dropped = append(dropped, id)
			continue
		}
		sg.Span = moved
		items[id] = sg
	}

	slices.SortFunc(dropped, compareIDs)
	return &Set{version: s.version + 1, items: items}, dropped
}

// Sorted returns the suggestions in render order: span.Compare, with ties
// broken by id so the order is deterministic.
func (s *Set) Sorted() []Suggestion {
	out := make([]Suggestion, 0, len(s.items))
	for _, sg := range s.items {
		out = append(out, sg)
	}
	slices.SortFunc(out, func(a, b Suggestion) int {
		if c := span.Compare(a.Span, b.Span); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return out
}

// IDs returns the ids of all suggestions in render order.
func (s *Set) IDs() []uuid.UUID {
	sorted := s.Sorted()
	ids := make([]uuid.UUID, len(sorted))
	for i, sg := range sorted {
		ids[i] = sg.ID
	}
	return ids
}

func compareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}
