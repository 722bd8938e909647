package buffer

import (
	"errors"
	"fmt"

	"github.com/dshills/wordsmith/internal/engine/span"
)

// ErrSpanInvalid indicates a span does not fit the buffer.
var ErrSpanInvalid = errors.New("span out of range")

// InitialVersion is the version of a freshly created buffer.
const InitialVersion int64 = 1

// Buffer is one version of the document text.
// It is safe for concurrent use because it is never mutated.
type Buffer struct {
	text    string
	runes   []rune
	version int64
}

// New creates a buffer holding text at InitialVersion.
func New(text string) *Buffer {
	return NewAt(text, InitialVersion)
}

// NewAt creates a buffer holding text at the given version.
// Versions below InitialVersion are raised to InitialVersion.
func NewAt(text string, version int64) *Buffer {
	if version < InitialVersion {
		version = InitialVersion
	}
	return &Buffer{
		text:    text,
		runes:   []rune(text),
		version: version,
	}
}

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	return b.text
}

// Version returns the buffer version.
func (b *Buffer) Version() int64 {
	return b.version
}

// Len returns the buffer length in characters.
func (b *Buffer) Len() int {
	return len(b.runes)
}

// Slice returns the text covered by s.
func (b *Buffer) Slice(s span.Span) (string, error) {
	if !span.Validate(s, len(b.runes)) {
		return "", fmt.Errorf("slice %s of %d characters: %w", s, len(b.runes), ErrSpanInvalid)
	}
	return string(b.runes[s.Start:s.End]), nil
}

// Replace returns a new buffer in which the characters covered by edit are
// replaced by text. The new buffer's version is b.Version()+1.
func (b *Buffer) Replace(edit span.Span, text string) (*Buffer, error) {
	if !span.Validate(edit, len(b.runes)) {
		return nil, fmt.Errorf("replace %s of %d characters: %w", edit, len(b.runes), ErrSpanInvalid)
	}

	insert := []rune(text)
	runes := make([]rune, 0, len(b.runes)-edit.Len()+len(insert))
	runes = append(runes, b.runes[:edit.Start]...)
	runes = append(runes, insert...)
	runes = append(runes, b.runes[edit.End:]...)

	return &Buffer{
		text:    string(runes),
		runes:   runes,
		version: b.version + 1,
	}, nil
}

// Excerpt returns the text of s plus up to radius characters on either side.
// Invalid spans yield an empty string.
func (b *Buffer) Excerpt(s span.Span, radius int) string {
	if !span.Validate(s, len(b.runes)) {
		return ""
	}
	if radius < 0 {
		radius = 0
	}
	start := max(0, s.Start-radius)
	end := min(len(b.runes), s.End+radius)
	return string(b.runes[start:end])
}

// String returns a short description of the buffer.
func (b *Buffer) String() string {
	return fmt.Sprintf("Buffer(v%d, %d chars)", b.version, len(b.runes))
}
