package span

import (
	"slices"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		span Span
		len  int
		want bool
	}{
		{"empty at start", New(0, 0), 0, true},
		{"whole buffer", New(0, 10), 10, true},
		{"empty at end", New(10, 10), 10, true},
		{"negative start", New(-1, 3), 10, false},
		{"reversed", New(5, 3), 10, false},
		{"past end", New(8, 11), 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Validate(tt.span, tt.len); got != tt.want {
				t.Errorf("Validate(%s, %d) = %v, want %v", tt.span, tt.len, got, tt.want)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		a, b Span
		want bool
	}{
		{New(0, 5), New(3, 8), true},
		{New(0, 5), New(5, 8), false},
		{New(5, 8), New(0, 5), false},
		{New(0, 10), New(2, 3), true},
		{New(2, 2), New(0, 5), true},
		{New(4, 4), New(4, 4), false},
	}

	for _, tt := range tests {
		if got := Overlaps(tt.a, tt.b); got != tt.want {
			t.Errorf("Overlaps(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := Overlaps(tt.b, tt.a); got != tt.want {
			t.Errorf("Overlaps is not symmetric for %s, %s", tt.a, tt.b)
		}
	}
}

func TestTranslateAfterReplacement(t *testing.T) {
	tests := []struct {
		name    string
		span    Span
		edit    Span
		replLen int
		want    Span
		wantOK  bool
	}{
		{"before edit", New(0, 3), New(5, 8), 1, New(0, 3), true},
		{"ends at edit start", New(0, 5), New(5, 8), 10, New(0, 5), true},
		{"after growing edit", New(10, 15), New(2, 5), 4, New(11, 16), true},
		{"after shrinking edit", New(10, 15), New(2, 5), 0, New(7, 12), true},
		{"starts at edit end", New(5, 7), New(2, 5), 1, New(3, 5), true},
		{"same length edit", New(4, 7), New(0, 3), 3, New(4, 7), true},
		{"insertion at span start", New(4, 7), New(4, 4), 2, New(6, 9), true},
		{"insertion inside span", New(2, 6), New(4, 4), 2, Span{}, false},
		{"overlaps edit start", New(3, 6), New(5, 8), 3, Span{}, false},
		{"overlaps edit end", New(6, 10), New(5, 8), 3, Span{}, false},
		{"encloses edit", New(0, 10), New(3, 4), 1, Span{}, false},
		{"inside edit", New(4, 5), New(3, 8), 1, Span{}, false},
		{"identical", New(3, 8), New(3, 8), 5, Span{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TranslateAfterReplacement(tt.span, tt.edit, tt.replLen)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestTranslateRoundTripOnDisjointEdits(t *testing.T) {
	spans := []Span{New(0, 2), New(3, 3), New(12, 20), New(25, 30)}
	edits := []struct {
		edit    Span
		replLen int
	}{
		{New(5, 9), 0},
		{New(5, 9), 7},
		{New(21, 21), 3},
		{New(2, 3), 1},
	}

	for _, s := range spans {
		for _, e := range edits {
			if Overlaps(s, e.edit) {
				continue
			}
			moved, ok := TranslateAfterReplacement(s, e.edit, e.replLen)
			if !ok {
				t.Fatalf("disjoint span %s invalidated by edit %s", s, e.edit)
			}
			// The inverse edit replaces the inserted text with the original length.
			inverse := New(e.edit.Start, e.edit.Start+e.replLen)
			back, ok := TranslateAfterReplacement(moved, inverse, e.edit.Len())
			if !ok {
				t.Fatalf("span %s invalidated by inverse edit %s", moved, inverse)
			}
			if back != s {
				t.Errorf("round trip of %s through %s: expected %s, got %s", s, e.edit, s, back)
			}
		}
	}
}

func TestTranslateCaret(t *testing.T) {
	tests := []struct {
		name    string
		offset  int
		edit    Span
		replLen int
		want    int
	}{
		{"before edit", 1, New(4, 6), 3, 1},
		{"at edit start", 4, New(4, 6), 3, 4},
		{"strictly inside", 5, New(4, 8), 2, 6},
		{"at edit end", 6, New(4, 6), 3, 7},
		{"after edit", 10, New(4, 6), 0, 8},
		{"typing at caret", 3, New(3, 3), 1, 4},
		{"deleting before caret", 5, New(4, 5), 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TranslateCaret(tt.offset, tt.edit, tt.replLen); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestCompareOrdering(t *testing.T) {
	spans := []Span{New(4, 6), New(0, 3), New(0, 8), New(4, 9), New(2, 2)}
	slices.SortFunc(spans, Compare)

	want := []Span{New(0, 8), New(0, 3), New(2, 2), New(4, 9), New(4, 6)}
	if !slices.Equal(spans, want) {
		t.Errorf("expected %v, got %v", want, spans)
	}
}

func TestSpanHelpers(t *testing.T) {
	s := New(3, 7)
	if s.Len() != 4 {
		t.Errorf("expected length 4, got %d", s.Len())
	}
	if s.IsEmpty() {
		t.Error("span should not be empty")
	}
	if !s.Contains(3) || s.Contains(7) {
		t.Error("Contains should be half-open")
	}
	if got := s.Shift(-3); got != New(0, 4) {
		t.Errorf("expected [0:4), got %s", got)
	}
	if s.String() != "[3:7)" {
		t.Errorf("unexpected string %q", s.String())
	}
	if Delta(New(2, 5), 4) != 1 {
		t.Errorf("expected delta 1, got %d", Delta(New(2, 5), 4))
	}
}
