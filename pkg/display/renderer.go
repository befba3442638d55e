package display

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/dotfold/pkg/style"
)

// Renderer turns a report into terminal-ready text
type Renderer interface {
	Render(rep Report) string
}

// NewRenderer picks the renderer for a resolved format. JSON output
// bypasses reports entirely; callers use WriteJSON for it.
func NewRenderer(format Format) Renderer {
	if format == FormatTerminal {
		return NewRichRenderer()
	}
	return NewPlainRenderer()
}

// RichRenderer renders reports with colors and styling in the
// three-column layout: kind : path : message.
type RichRenderer struct {
	kindWidth int
	pathWidth int
}

// NewRichRenderer creates a rich terminal renderer
func NewRichRenderer() *RichRenderer {
	return &RichRenderer{
		kindWidth: 10,
		pathWidth: 24,
	}
}

// Render renders the complete report
func (r *RichRenderer) Render(rep Report) string {
	var out strings.Builder

	out.WriteString(style.TitleStyle.Render(header(rep)) + "\n")

	for _, sec := range rep.Sections {
		out.WriteString(style.SubtitleStyle.Render(sec.Title) + "\n")
		for _, row := range sec.Rows {
			out.WriteString(style.Indent(r.renderRow(row), 1) + "\n")
		}
		out.WriteString("\n")
	}

	if rep.Empty() && len(rep.Notes) == 0 {
		out.WriteString(style.MutedStyle.Render("Nothing to report.") + "\n")
	}
	for _, note := range rep.Notes {
		out.WriteString(style.MutedStyle.Render(note) + "\n")
	}

	return strings.TrimRight(out.String(), "\n")
}

// renderRow renders one row: indicator, status-colored kind, path,
// message.
func (r *RichRenderer) renderRow(row Row) string {
	kind := style.StatusStyle(row.Status).Sprint(padRight(row.Kind, r.kindWidth))
	path := style.PathStyle.Render(padRight(row.Path, r.pathWidth))
	return fmt.Sprintf("%s %s : %s : %s", style.Indicator(row.Status), kind, path, row.Message)
}

// PlainRenderer renders reports as unstyled text
type PlainRenderer struct{}

// NewPlainRenderer creates a plain text renderer
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

// Render renders the complete report without styling
func (r *PlainRenderer) Render(rep Report) string {
	var out strings.Builder

	out.WriteString(header(rep) + "\n\n")

	for _, sec := range rep.Sections {
		out.WriteString(sec.Title + ":\n")
		for _, row := range sec.Rows {
			out.WriteString("  " + r.renderRow(row) + "\n")
		}
		out.WriteString("\n")
	}

	if rep.Empty() && len(rep.Notes) == 0 {
		out.WriteString("Nothing to report.\n")
	}
	for _, note := range rep.Notes {
		out.WriteString(note + "\n")
	}

	return strings.TrimRight(out.String(), "\n")
}

func (r *PlainRenderer) renderRow(row Row) string {
	return fmt.Sprintf("%s : %s : %s", padRight(row.Kind, 10), padRight(row.Path, 24), row.Message)
}

// header builds the first line: command, host, dry-run marker
func header(rep Report) string {
	h := rep.Command
	if len(h) > 0 {
		h = strings.ToUpper(h[:1]) + h[1:]
	}
	if rep.Host != "" {
		h += " on " + rep.Host
	}
	if rep.DryRun {
		h += " (dry run)"
	}
	return h
}

// padRight pads a string to the given width, truncating with an
// ellipsis when it overflows
func padRight(s string, width int) string {
	if len(s) > width {
		return s[:width-1] + "…"
	}
	if len(s) == width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
