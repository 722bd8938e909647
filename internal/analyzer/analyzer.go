// Package analyzer talks to the remote writing analyzer and drives the
// debounced request cycle that keeps a session's suggestions current.
package analyzer

import (
	"context"

	"github.com/dshills/wordsmith/internal/engine/suggestion"
)

// SystemPrompt instructs a chat model to answer in the analyzer wire format.
const SystemPrompt = `You are a professional writing assistant. Your task is to analyze text for grammar, spelling, style, and tone issues.

For each issue, you must provide:
1. The type (grammar/spelling/style/tone)
2. A clear explanation message
3. The suggested replacement text
4. The exact start and end character positions of the issue in the original text

Format your response as a JSON object with a 'suggestions' array. Each suggestion must have these exact fields:
{
  "suggestions": [
    {
      "type": "grammar",
      "message": "Incorrect verb tense",
      "replacement": "went",
      "start": 5,
      "end": 8
    }
  ]
}

Important:
- Only respond with valid JSON
- Include character positions (start/end) for each issue
- Keep suggestions concise and clear
- Ensure all fields are present for each suggestion`

// Analyzer produces suggestions for a text.
// Implementations must be safe for concurrent use.
type Analyzer interface {
	Analyze(ctx context.Context, text string) ([]suggestion.Raw, error)
}

// Func adapts a function to the Analyzer interface.
type Func func(ctx context.Context, text string) ([]suggestion.Raw, error)

// Analyze calls f.
func (f Func) Analyze(ctx context.Context, text string) ([]suggestion.Raw, error) {
	return f(ctx, text)
}
