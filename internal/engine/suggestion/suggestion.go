// Package suggestion holds analyzer suggestions and the immutable set that
// scopes them to one buffer version.
package suggestion

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/wordsmith/internal/engine/span"
)

// Kind categorizes a suggestion.
type Kind string

const (
	KindGrammar  Kind = "grammar"
	KindSpelling Kind = "spelling"
	KindStyle    Kind = "style"
	KindTone     Kind = "tone"
	KindOther    Kind = "other"
)

// ParseKind maps an analyzer type string to a Kind.
// Unknown types map to KindOther.
func ParseKind(s string) Kind {
	switch Kind(s) {
	case KindGrammar, KindSpelling, KindStyle, KindTone:
		return Kind(s)
	default:
		return KindOther
	}
}

// Raw is one suggestion as returned by the analyzer, before validation.
type Raw struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	Replacement string `json:"replacement"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
}

// Span returns the span the analyzer claims the suggestion covers.
func (r Raw) Span() span.Span {
	return span.New(r.Start, r.End)
}

// Suggestion is a validated analyzer-proposed edit.
type Suggestion struct {
	ID          uuid.UUID `json:"id"`
	Kind        Kind      `json:"kind"`
	Message     string    `json:"message"`
	Replacement string    `json:"replacement"`
	Span        span.Span `json:"span"`
}

// String returns a short description of the suggestion.
func (s Suggestion) String() string {
	return fmt.Sprintf("%s%s -> %q", s.Kind, s.Span, s.Replacement)
}
