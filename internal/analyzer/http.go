package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/sjson"

	"github.com/dshills/wordsmith/internal/engine/suggestion"
)

// maxResponseBytes bounds how much of an analyzer response is read.
const maxResponseBytes = 4 << 20

// HTTPAnalyzer posts text to a remote analyzer endpoint that speaks the
// analyzer wire contract.
type HTTPAnalyzer struct {
	endpoint string
	client   *http.Client
}

// HTTPOption configures an HTTPAnalyzer.
type HTTPOption func(*HTTPAnalyzer)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(a *HTTPAnalyzer) {
		if c != nil {
			a.client = c
		}
	}
}

// WithTimeout sets a per-request timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) HTTPOption {
	return func(a *HTTPAnalyzer) {
		if d > 0 {
			a.client = &http.Client{Transport: a.client.Transport, Timeout: d}
		}
	}
}

// NewHTTPAnalyzer creates an analyzer for endpoint, for example
// "http://localhost:3001/api/analyze-text".
func NewHTTPAnalyzer(endpoint string, opts ...HTTPOption) *HTTPAnalyzer {
	a := &HTTPAnalyzer{
		endpoint: endpoint,
		client:   &http.Client{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze implements Analyzer.
func (a *HTTPAnalyzer) Analyze(ctx context.Context, text string) ([]suggestion.Raw, error) {
	body, err := sjson.SetBytes([]byte(`{}`), "text", text)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: "request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Op: "read", Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Op: "request", Status: resp.StatusCode}
	}

	return Decode(data)
}
