package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/ppiankov/lawlens/internal/model"
)

// Output formats.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatTable    = "table"
)

// Renderer writes reports in one of the output formats.
type Renderer struct {
	// ShowConfidence keeps confidence and source text in JSON and adds a
	// confidence column elsewhere.
	ShowConfidence bool
}

// NewRenderer creates a Renderer.
func NewRenderer(showConfidence bool) *Renderer {
	return &Renderer{ShowConfidence: showConfidence}
}

// Render writes report to w in format.
func (r *Renderer) Render(w io.Writer, report *model.Report, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		return r.RenderJSON(w, report)
	case FormatMarkdown, "md":
		return r.RenderMarkdown(w, report)
	case FormatTable:
		return r.RenderTable(w, report)
	default:
		return fmt.Errorf("unknown output format %q (supported: json, markdown, table)", format)
	}
}

// RenderJSON writes the clause list. Without ShowConfidence it is exactly the
// public clause array; with it, the full report.
func (r *Renderer) RenderJSON(w io.Writer, report *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if r.ShowConfidence {
		return enc.Encode(report)
	}
	return enc.Encode(report.PublicClauses())
}

// RenderMarkdown writes one section per clause.
func (r *Renderer) RenderMarkdown(w io.Writer, report *model.Report) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Clauses: %s\n\n", report.Subject)
	fmt.Fprintf(&sb, "- Source: %s\n", report.Source)
	fmt.Fprintf(&sb, "- Paragraphs: %d\n", report.Paragraphs)
	counts := report.RiskCounts()
	fmt.Fprintf(&sb, "- Risk: %d high, %d medium, %d low\n\n",
		counts[model.RiskHigh], counts[model.RiskMedium], counts[model.RiskLow])

	if len(report.Clauses) == 0 {
		sb.WriteString("_No clauses found._\n")
	}

	for i, c := range report.Clauses {
		fmt.Fprintf(&sb, "## %d. %s (%s risk)\n\n", i+1, c.Title, c.Risk)
		if c.Section != "" {
			fmt.Fprintf(&sb, "**%s**\n\n", c.Section)
		}
		fmt.Fprintf(&sb, "%s\n\n", c.Description)
		if r.ShowConfidence {
			fmt.Fprintf(&sb, "Confidence: %.3f\n\n", c.Confidence)
			fmt.Fprintf(&sb, "> %s\n\n", c.Source)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// RenderTable writes an aligned plain-text table.
func (r *Renderer) RenderTable(w io.Writer, report *model.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if r.ShowConfidence {
		fmt.Fprintln(tw, "TITLE\tRISK\tSECTION\tCONFIDENCE\tDESCRIPTION")
		fmt.Fprintln(tw, "-----\t----\t-------\t----------\t-----------")
	} else {
		fmt.Fprintln(tw, "TITLE\tRISK\tSECTION\tDESCRIPTION")
		fmt.Fprintln(tw, "-----\t----\t-------\t-----------")
	}

	for _, c := range report.Clauses {
		section := c.Section
		if section == "" {
			section = "-"
		}
		desc := oneLine(c.Description, 80)
		if r.ShowConfidence {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.3f\t%s\n", c.Title, c.Risk, section, c.Confidence, desc)
		} else {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Title, c.Risk, section, desc)
		}
	}
	return tw.Flush()
}

// RenderFile writes the report to path, creating parent directories.
func (r *Renderer) RenderFile(report *model.Report, path, format string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()
	return r.Render(f, report, format)
}

// Extension returns the file extension for format.
func Extension(format string) string {
	switch strings.ToLower(format) {
	case FormatMarkdown, "md":
		return ".md"
	case FormatTable:
		return ".txt"
	default:
		return ".json"
	}
}

// oneLine collapses whitespace and cuts s to max runes.
func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
