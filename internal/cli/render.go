package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ismailopm12/coffeeqc/internal/domain/types"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Result pairs a record with its outcome or the error scoring it.
type Result struct {
	Source  string         `json:"source"`
	ID      string         `json:"id,omitempty"`
	Outcome *types.Outcome `json:"outcome,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Renderer writes results in one output format.
type Renderer interface {
	Render(w io.Writer, results []Result) error
}

// NewRenderer returns the renderer for format.
func NewRenderer(format string, w io.Writer) (Renderer, error) {
	switch strings.ToLower(format) {
	case FormatText, "":
		return newTextRenderer(w), nil
	case FormatJSON:
		return jsonRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}

type jsonRenderer struct{}

func (jsonRenderer) Render(w io.Writer, results []Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

type textRenderer struct {
	header  lipgloss.Style
	good    lipgloss.Style
	fair    lipgloss.Style
	poor    lipgloss.Style
	advice  lipgloss.Style
	muted   lipgloss.Style
	failure lipgloss.Style
}

// newTextRenderer binds styles to w so colour is dropped when w is not a
// terminal.
func newTextRenderer(w io.Writer) textRenderer {
	r := lipgloss.NewRenderer(w)
	return textRenderer{
		header:  r.NewStyle().Bold(true),
		good:    r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		fair:    r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		poor:    r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		advice:  r.NewStyle().Foreground(lipgloss.Color("3")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("7")),
		failure: r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// scoreStyle colours specialty scores green, commercial yellow, the rest red.
func (t textRenderer) scoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 80:
		return t.good
	case score >= 70:
		return t.fair
	default:
		return t.poor
	}
}

func (t textRenderer) Render(w io.Writer, results []Result) error {
	var b strings.Builder
	for i, res := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		t.renderOne(&b, res)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (t textRenderer) renderOne(b *strings.Builder, res Result) {
	title := res.Source
	if res.ID != "" {
		title += " (" + res.ID + ")"
	}
	if res.Error != "" {
		fmt.Fprintf(b, "%s\n  %s\n", t.header.Render(title), t.failure.Render("error: "+res.Error))
		return
	}
	out := res.Outcome
	fmt.Fprintf(b, "%s %s\n", t.header.Render(title), t.muted.Render(out.Kind))

	if out.Score != nil {
		line := "  score   " + t.scoreStyle(*out.Score).Render(fmt.Sprintf("%.2f", *out.Score))
		if out.Grade != "" {
			line += "  grade " + out.Grade
		}
		if out.Quality != "" {
			line += "  " + out.Quality
		}
		b.WriteString(line + "\n")
	}
	if out.RoastLevel != "" {
		fmt.Fprintf(b, "  roast   %s\n", t.header.Render(out.RoastLevel))
	}
	if out.DevelopmentRatio != nil {
		pct := 0.0
		if out.DevelopmentPercent != nil {
			pct = *out.DevelopmentPercent
		}
		fmt.Fprintf(b, "  dtr     %.2f (%.1f%% of total)\n", *out.DevelopmentRatio, pct)
	}
	for _, ind := range out.QualityIndicators {
		fmt.Fprintf(b, "  %s %s\n", t.good.Render("+"), ind)
	}
	for _, rec := range out.Recommendations {
		fmt.Fprintf(b, "  %s %s\n", t.advice.Render("!"), rec)
	}
}
