package buffer

import (
	"errors"
	"testing"

	"github.com/dshills/wordsmith/internal/engine/span"
)

func TestNewBuffer(t *testing.T) {
	b := New("héllo")
	if b.Version() != InitialVersion {
		t.Errorf("expected version %d, got %d", InitialVersion, b.Version())
	}
	if b.Len() != 5 {
		t.Errorf("expected 5 characters, got %d", b.Len())
	}
	if b.Text() != "héllo" {
		t.Errorf("unexpected text %q", b.Text())
	}
}

func TestNewAtClampsVersion(t *testing.T) {
	if v := NewAt("x", 0).Version(); v != InitialVersion {
		t.Errorf("expected version %d, got %d", InitialVersion, v)
	}
	if v := NewAt("x", 7).Version(); v != 7 {
		t.Errorf("expected version 7, got %d", v)
	}
}

func TestReplace(t *testing.T) {
	b := New("Teh cat sat")

	next, err := b.Replace(span.New(0, 3), "The")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Text() != "The cat sat" {
		t.Errorf("expected %q, got %q", "The cat sat", next.Text())
	}
	if next.Version() != b.Version()+1 {
		t.Errorf("expected version %d, got %d", b.Version()+1, next.Version())
	}
	if b.Text() != "Teh cat sat" {
		t.Error("original buffer should be unchanged")
	}
}

func TestReplaceRuneOffsets(t *testing.T) {
	b := New("naïve café")

	next, err := b.Replace(span.New(6, 10), "coffee")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Text() != "naïve coffee" {
		t.Errorf("expected %q, got %q", "naïve coffee", next.Text())
	}
	if next.Len() != 12 {
		t.Errorf("expected 12 characters, got %d", next.Len())
	}
}

func TestReplaceInvalidSpan(t *testing.T) {
	b := New("short")

	_, err := b.Replace(span.New(3, 9), "x")
	if !errors.Is(err, ErrSpanInvalid) {
		t.Errorf("expected ErrSpanInvalid, got %v", err)
	}
}

func TestSlice(t *testing.T) {
	b := New("I has one apple")

	got, err := b.Slice(span.New(2, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "has" {
		t.Errorf("expected %q, got %q", "has", got)
	}

	if _, err := b.Slice(span.New(10, 99)); !errors.Is(err, ErrSpanInvalid) {
		t.Errorf("expected ErrSpanInvalid, got %v", err)
	}
}

func TestExcerpt(t *testing.T) {
	b := New("The quick brown fox jumps")

	if got := b.Excerpt(span.New(10, 15), 4); got != "ick brown fox" {
		t.Errorf("unexpected excerpt %q", got)
	}
	if got := b.Excerpt(span.New(0, 3), 100); got != b.Text() {
		t.Errorf("excerpt should clamp to buffer, got %q", got)
	}
	if got := b.Excerpt(span.New(20, 40), 2); got != "" {
		t.Errorf("invalid span should yield empty excerpt, got %q", got)
	}
}

func TestStats(t *testing.T) {
	tests := []struct {
		text  string
		words int
		chars int
		mins  int
	}{
		{"", 0, 0, 0},
		{"Hello, world!", 2, 13, 1},
		{"  spaced   out  ", 2, 16, 1},
		{"it's 42 — fine.", 3, 15, 1},
	}

	for _, tt := range tests {
		got := ComputeStats(tt.text)
		if got.Words != tt.words {
			t.Errorf("%q: expected %d words, got %d", tt.text, tt.words, got.Words)
		}
		if got.Characters != tt.chars {
			t.Errorf("%q: expected %d characters, got %d", tt.text, tt.chars, got.Characters)
		}
		if got.ReadingMinutes != tt.mins {
			t.Errorf("%q: expected %d minutes, got %d", tt.text, tt.mins, got.ReadingMinutes)
		}
	}
}

func TestStatsReadingTimeRoundsUp(t *testing.T) {
	text := ""
	for i := 0; i < 201; i++ {
		text += "word "
	}
	if got := ComputeStats(text).ReadingMinutes; got != 2 {
		t.Errorf("expected 2 minutes, got %d", got)
	}
}
