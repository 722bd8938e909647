package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dshills/wordsmith/internal/engine/projector"
	"github.com/dshills/wordsmith/internal/engine/suggestion"
)

// segmentView is one projection segment reduced to what the terminal needs.
type segmentView struct {
	Text string
	Kind suggestion.Kind // empty for plain text
}

func segments(p *projector.Projection) []segmentView {
	var out []segmentView
	for seg := range p.Segments() {
		v := segmentView{Text: seg.Text}
		if seg.Decoration != nil {
			v.Kind = seg.Decoration.Kind
		}
		out = append(out, v)
	}
	return out
}

var kindColors = map[suggestion.Kind]lipgloss.Color{
	suggestion.KindGrammar:  lipgloss.Color("1"),
	suggestion.KindSpelling: lipgloss.Color("3"),
	suggestion.KindStyle:    lipgloss.Color("4"),
	suggestion.KindTone:     lipgloss.Color("5"),
	suggestion.KindOther:    lipgloss.Color("6"),
}

var titleCase = cases.Title(language.English)

// kindLabel returns the display name of a kind, e.g. "Spelling".
func kindLabel(k suggestion.Kind) string {
	return titleCase.String(string(k))
}

// renderReport prints the text with suggestions underlined in their kind's
// color, followed by the numbered suggestion list. Styling is dropped when
// w is not a terminal.
func renderReport(w io.Writer, r checkReport) {
	re := lipgloss.NewRenderer(w)
	dim := re.NewStyle().Faint(true)
	bold := re.NewStyle().Bold(true)

	var b strings.Builder
	for _, seg := range r.Segments {
		if seg.Kind == "" {
			b.WriteString(seg.Text)
			continue
		}
		b.WriteString(re.NewStyle().Underline(true).Foreground(kindColors[seg.Kind]).Render(seg.Text))
	}
	fmt.Fprintln(w, b.String())
	fmt.Fprintln(w)

	if len(r.Applied) > 0 {
		fmt.Fprintln(w, bold.Render(fmt.Sprintf("Applied %d suggestions", len(r.Applied))))
		for _, sg := range r.Applied {
			fmt.Fprintf(w, "  %s %q -> %q\n", kindLabel(sg.Kind), sg.Context, sg.Replacement)
		}
		fmt.Fprintln(w)
	}

	if len(r.Suggestions) == 0 {
		fmt.Fprintln(w, dim.Render("No suggestions."))
		return
	}

	for i, sg := range r.Suggestions {
		label := re.NewStyle().Bold(true).Foreground(kindColors[sg.Kind]).Render(kindLabel(sg.Kind))
		fmt.Fprintf(w, "%2d. %s %s %s\n", i+1, label, dim.Render(sg.Span.String()), sg.Message)
		fmt.Fprintf(w, "    %s -> %q\n", dim.Render(fmt.Sprintf("%q", sg.Context)), sg.Replacement)
	}
}
