package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/dshills/wordsmith/internal/analyzer"
	"github.com/dshills/wordsmith/internal/app"
	"github.com/dshills/wordsmith/internal/config"
	"github.com/dshills/wordsmith/internal/engine"
	"github.com/dshills/wordsmith/internal/notify"
	"github.com/dshills/wordsmith/internal/store"
)

var (
	checkApply bool
	checkJSON  bool
)

func init() {
	checkCmd.Flags().BoolVar(&checkApply, "apply", false, "apply every non-conflicting suggestion and print the result")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print suggestions as JSON")
}

var checkCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Analyze a file once and print its suggestions",
	Long:  "Analyze a file once and print the text with suggestions highlighted. Use - to read standard input.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// One-shot runs analyze explicitly and keep nothing.
		cfg.Analyzer.Debounce = config.Duration{Duration: time.Hour}

		application, err := app.New(cmd.Context(), cfg,
			app.WithLogger(newLogger(cfg)),
			app.WithStore(store.NewMemory()),
			app.WithNotifier(notify.New(notify.WithHistory(0))),
		)
		if err != nil {
			return err
		}
		defer application.Close(context.Background())

		report, err := runCheck(cmd.Context(), application, text, checkApply)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if checkJSON {
			return writeJSON(out, report, isTerminal(os.Stdout))
		}
		renderReport(out, report)
		return nil
	},
}

// checkReport is the result of a check run.
type checkReport struct {
	Text        string             `json:"text"`
	Version     int64              `json:"version"`
	Suggestions []engine.Annotated `json:"suggestions"`
	Applied     []engine.Annotated `json:"applied,omitempty"`
	Segments    []segmentView      `json:"-"`
}

// runCheck analyzes text and, when apply is set, applies suggestions one at
// a time until none remain. Each apply drops the suggestions it overlaps.
func runCheck(ctx context.Context, a *app.Application, text string, apply bool) (checkReport, error) {
	s, err := a.OpenSession(ctx, app.OpenRequest{Content: &text})
	if err != nil {
		return checkReport{}, err
	}

	out, err := s.Analyze(ctx)
	if err != nil {
		return checkReport{}, err
	}
	if out.State == analyzer.StateFailed {
		return checkReport{}, fmt.Errorf("analysis failed: %w", out.Err)
	}

	var applied []engine.Annotated
	if apply {
		for {
			snap := s.Snapshot()
			if len(snap.Suggestions) == 0 {
				break
			}
			next := snap.Suggestions[0]
			if _, err := s.Apply(ctx, next.ID, snap.Version); err != nil {
				return checkReport{}, err
			}
			applied = append(applied, next)
		}
	}

	snap := s.Snapshot()
	report := checkReport{
		Text:        snap.Text,
		Version:     snap.Version,
		Suggestions: snap.Suggestions,
		Applied:     applied,
		Segments:    segments(s.Project()),
	}
	if report.Suggestions == nil {
		report.Suggestions = []engine.Annotated{}
	}
	return report, nil
}

func readInput(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func writeJSON(w io.Writer, v any, color bool) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = pretty.Pretty(data)
	if color {
		data = pretty.Color(data, nil)
	}
	_, err = w.Write(data)
	return err
}
