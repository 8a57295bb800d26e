package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/chriscorrea/tally/internal/extract"
	"github.com/chriscorrea/tally/internal/fetch"
	"github.com/chriscorrea/tally/internal/project"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// OutputFormat defines the output format for reports
type OutputFormat int

const (
	// plain text table (default)
	Text OutputFormat = iota
	// JSON document
	JSON
	// Markdown tables
	Markdown
)

// String returns the string representation of the output
func (f OutputFormat) String() string {
	switch f {
	case Text:
		return "Text"
	case JSON:
		return "JSON"
	case Markdown:
		return "Markdown"
	default:
		return "Unknown"
	}
}

// SectionReport is the count of one section of a project.
type SectionReport struct {
	ID      string `json:"id"`
	Title   string `json:"title,omitempty"`
	Count   int    `json:"count"`
	Excerpt string `json:"excerpt,omitempty"`
}

// SourceReport is the count of one source. Sections are only listed for
// project files.
type SourceReport struct {
	Source   string          `json:"source"`
	Kind     string          `json:"kind"`
	Title    string          `json:"title,omitempty"`
	Sections []SectionReport `json:"sections,omitempty"`
	Excerpt  string          `json:"excerpt,omitempty"`
	Total    int             `json:"total"`
}

// Report holds the counts of all sources of one run.
type Report struct {
	Method  string         `json:"method"`
	Unit    string         `json:"unit"`
	Sources []SourceReport `json:"sources"`
	Total   int            `json:"total"`
}

func (r *Report) add(s SourceReport) {
	r.Sources = append(r.Sources, s)
	r.Total += s.Total
}

func newSourceReport(p *project.Project, kind fetch.Kind, excerptWords int) SourceReport {
	sr := SourceReport{
		Source: p.Path,
		Kind:   kind.String(),
		Title:  p.Title,
		Total:  p.TotalWords(),
	}

	if kind != fetch.Project {
		if len(p.Sections) > 0 {
			sr.Excerpt = excerpt(p.Sections[0].Content, excerptWords)
		}
		return sr
	}

	for _, s := range p.Sections {
		sr.Sections = append(sr.Sections, SectionReport{
			ID:      s.ID,
			Title:   s.Title,
			Count:   s.WordCount,
			Excerpt: excerpt(s.Content, excerptWords),
		})
	}
	return sr
}

// excerpt returns a preview of markup, or "" when previews are off or the
// markup cannot be rendered.
func excerpt(markup string, words int) string {
	if words <= 0 {
		return ""
	}
	text, err := extract.Excerpt(markup, words)
	if err != nil {
		slog.Debug("Excerpt unavailable", "error", err)
		return ""
	}
	return text
}

// Render writes the report to w in the given format.
func (r *Report) Render(w io.Writer, format OutputFormat) error {
	switch format {
	case JSON:
		return r.renderJSON(w)
	case Markdown:
		return r.renderMarkdown(w)
	default:
		return r.renderText(w)
	}
}

func (r *Report) renderJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

func (r *Report) renderText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, s := range r.Sources {
		heading := s.Source
		if s.Title != "" {
			heading += "\t" + s.Title
		}
		fmt.Fprintf(tw, "%s\t%d %s\n", heading, s.Total, r.Unit)
		if s.Excerpt != "" {
			fmt.Fprintf(tw, "  %s\n", s.Excerpt)
		}

		for _, sec := range s.Sections {
			fmt.Fprintf(tw, "  %s\t%s\t%d\n", sec.ID, sec.Title, sec.Count)
			if sec.Excerpt != "" {
				fmt.Fprintf(tw, "  \t%s\n", sec.Excerpt)
			}
		}
	}
	if len(r.Sources) > 1 {
		fmt.Fprintf(tw, "total\t%d %s\n", r.Total, r.Unit)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (r *Report) renderMarkdown(w io.Writer) error {
	var b strings.Builder

	for i, s := range r.Sources {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("## " + s.Source)
		if s.Title != "" {
			b.WriteString(": " + s.Title)
		}
		b.WriteString("\n\n")

		if len(s.Sections) > 0 {
			fmt.Fprintf(&b, "| Section | Title | %s |\n", titleCase(r.Unit))
			b.WriteString("|---|---|---:|\n")
			for _, sec := range s.Sections {
				fmt.Fprintf(&b, "| %s | %s | %d |\n", cell(sec.ID), cell(sec.Title), sec.Count)
			}
			b.WriteString("\n")
		}
		if s.Excerpt != "" {
			b.WriteString("> " + s.Excerpt + "\n\n")
		}
		fmt.Fprintf(&b, "**Total:** %d %s\n", s.Total, r.Unit)
	}
	if len(r.Sources) > 1 {
		fmt.Fprintf(&b, "\n**Grand total:** %d %s\n", r.Total, r.Unit)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// cell escapes a value for use inside a Markdown table cell.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
