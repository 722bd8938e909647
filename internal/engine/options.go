package engine

import (
	"log/slog"

	"github.com/dshills/wordsmith/internal/engine/cursor"
)

// DefaultContextRadius is the number of characters shown on either side of a
// suggestion in its context excerpt.
const DefaultContextRadius = 20

// Option configures a Session during creation.
type Option func(*Session)

// WithContent sets the initial content of the session.
func WithContent(content string) Option {
	return func(s *Session) {
		s.initContent = content
	}
}

// WithVersion sets the version of the initial content.
// Values below buffer.InitialVersion are ignored.
func WithVersion(version int64) Option {
	return func(s *Session) {
		s.initVersion = version
	}
}

// WithCaret sets the initial caret. It is clamped to the initial content.
func WithCaret(c cursor.Caret) Option {
	return func(s *Session) {
		s.initCaret = c
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithContextRadius sets the context excerpt radius.
func WithContextRadius(radius int) Option {
	return func(s *Session) {
		if radius >= 0 {
			s.contextRadius = radius
		}
	}
}
