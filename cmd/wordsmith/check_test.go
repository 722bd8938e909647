package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dshills/wordsmith/internal/analyzer"
	"github.com/dshills/wordsmith/internal/app"
	"github.com/dshills/wordsmith/internal/config"
	"github.com/dshills/wordsmith/internal/engine/suggestion"
	"github.com/dshills/wordsmith/internal/notify"
	"github.com/dshills/wordsmith/internal/store"
)

const sample = "Teh cat sat"

var sampleAnalyzer = analyzer.Func(func(_ context.Context, text string) ([]suggestion.Raw, error) {
	if text != sample {
		return nil, nil
	}
	return []suggestion.Raw{
		{Type: "spelling", Message: "Misspelled word", Replacement: "The", Start: 0, End: 3},
		{Type: "style", Message: "Be specific", Replacement: "The dog", Start: 0, End: 7},
		{Type: "grammar", Message: "Use present tense", Replacement: "sits", Start: 8, End: 11},
	}, nil
})

func newCheckApp(t *testing.T) *app.Application {
	t.Helper()
	cfg := config.Default()
	cfg.Analyzer.Debounce = config.Duration{Duration: time.Hour}

	a, err := app.New(context.Background(), cfg,
		app.WithAnalyzer(sampleAnalyzer),
		app.WithStore(store.NewMemory()),
		app.WithLogger(app.NullLogger()),
		app.WithNotifier(notify.New()),
	)
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func TestRunCheck(t *testing.T) {
	report, err := runCheck(context.Background(), newCheckApp(t), sample, false)
	if err != nil {
		t.Fatalf("runCheck: %v", err)
	}
	if report.Text != sample {
		t.Errorf("expected text unchanged, got %q", report.Text)
	}
	if len(report.Suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(report.Suggestions))
	}
	if report.Suggestions[0].Kind != suggestion.KindStyle {
		t.Errorf("expected the widest span first, got %s", report.Suggestions[0].Kind)
	}

	var buf bytes.Buffer
	renderReport(&buf, report)
	out := buf.String()
	for _, want := range []string{sample, " 1. Style [0:7)", "Misspelled word", `-> "sits"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRunCheckApply(t *testing.T) {
	report, err := runCheck(context.Background(), newCheckApp(t), sample, true)
	if err != nil {
		t.Fatalf("runCheck: %v", err)
	}
	if report.Text != "The dog sits" {
		t.Errorf("expected %q, got %q", "The dog sits", report.Text)
	}
	if len(report.Applied) != 2 {
		t.Fatalf("expected 2 applied suggestions, got %d", len(report.Applied))
	}
	if len(report.Suggestions) != 0 {
		t.Errorf("expected no remaining suggestions, got %d", len(report.Suggestions))
	}
	if report.Version != 3 {
		t.Errorf("expected version 3, got %d", report.Version)
	}

	var buf bytes.Buffer
	renderReport(&buf, report)
	if !strings.Contains(buf.String(), "Applied 2 suggestions") || !strings.Contains(buf.String(), "No suggestions.") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestWriteJSON(t *testing.T) {
	report, err := runCheck(context.Background(), newCheckApp(t), sample, false)
	if err != nil {
		t.Fatalf("runCheck: %v", err)
	}

	var buf bytes.Buffer
	if err := writeJSON(&buf, report, false); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}

	var decoded struct {
		Text        string `json:"text"`
		Suggestions []struct {
			Type    string `json:"kind"`
			Context string `json:"context"`
		} `json:"suggestions"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if decoded.Text != sample || len(decoded.Suggestions) != 3 {
		t.Errorf("unexpected report %+v", decoded)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("expected indented output")
	}
}

func TestKindLabel(t *testing.T) {
	if got := kindLabel(suggestion.KindSpelling); got != "Spelling" {
		t.Errorf("expected Spelling, got %q", got)
	}
}
