// Package render formats records for the terminal. Fields are grouped by
// schema section with a heading per section.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/crisrod14/destinosAI/internal/schema"
	"github.com/crisrod14/destinosAI/internal/store"
)

var (
	accent  = lipgloss.Color("#2196F3")
	muted   = lipgloss.Color("#8a8f98")
	warning = lipgloss.Color("#FFC107")
	success = lipgloss.Color("#8BC34A")
)

// Styles holds the styles used by the renderers.
type Styles struct {
	Title   lipgloss.Style
	Section lipgloss.Style
	Field   lipgloss.Style
	Value   lipgloss.Style
	Empty   lipgloss.Style
	Warn    lipgloss.Style
	OK      lipgloss.Style
}

// DefaultStyles returns the standard palette.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		Section: lipgloss.NewStyle().Bold(true).Underline(true).MarginTop(1),
		Field:   lipgloss.NewStyle().Foreground(muted),
		Value:   lipgloss.NewStyle().PaddingLeft(2),
		Empty:   lipgloss.NewStyle().PaddingLeft(2).Foreground(muted).Italic(true),
		Warn:    lipgloss.NewStyle().Foreground(warning),
		OK:      lipgloss.NewStyle().Foreground(success),
	}
}

// Renderer renders records at a fixed width. Width 0 disables wrapping.
type Renderer struct {
	Styles Styles
	Width  int
}

// New returns a Renderer with the default styles.
func New(width int) *Renderer {
	return &Renderer{Styles: DefaultStyles(), Width: width}
}

// Record renders every field of rec grouped by section, in schema order.
func (r *Renderer) Record(rec schema.Record) string {
	var sb strings.Builder
	sb.WriteString(r.Styles.Title.Render(rec.Location()))
	sb.WriteString("\n")

	for _, section := range schema.Sections() {
		fields := schema.SectionFields(section)
		if len(fields) == 0 {
			continue
		}
		sb.WriteString(r.Styles.Section.Render(string(section)))
		sb.WriteString("\n")
		for _, f := range fields {
			sb.WriteString(r.Styles.Field.Render(f.Name))
			sb.WriteString("\n")
			sb.WriteString(r.value(rec.Get(f.Name)))
			sb.WriteString("\n")
		}
	}

	if empty := rec.EmptyMandatory(); len(empty) > 0 {
		sb.WriteString("\n")
		sb.WriteString(r.Styles.Warn.Render("empty mandatory fields: " + strings.Join(empty, ", ")))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (r *Renderer) value(v string) string {
	style := r.Styles.Value
	if v == "" {
		style = r.Styles.Empty
		v = "(empty)"
	}
	if r.Width > 0 {
		style = style.Width(r.Width)
	}
	return style.Render(v)
}

// List renders stored entries as an aligned table.
func (r *Renderer) List(entries []store.Entry) string {
	if len(entries) == 0 {
		return r.Styles.Field.Render("no destinations") + "\n"
	}
	width := lipgloss.Width("LOCATION")
	for _, e := range entries {
		if w := lipgloss.Width(e.Location); w > width {
			width = w
		}
	}
	cell := lipgloss.NewStyle().Width(width + 2)

	var sb strings.Builder
	sb.WriteString(r.Styles.Title.Render(cell.Render("LOCATION") + "LAST UPDATED"))
	sb.WriteString("\n")
	for _, e := range entries {
		updated := "-"
		if !e.LastUpdated.IsZero() {
			updated = e.LastUpdated.Local().Format("2006-01-02 15:04")
		}
		sb.WriteString(cell.Render(e.Location) + updated)
		sb.WriteString("\n")
	}
	sb.WriteString(r.Styles.Field.Render(fmt.Sprintf("%d destinations", len(entries))))
	sb.WriteString("\n")
	return sb.String()
}

// Sync renders a sync state line; local_only is highlighted with reason.
func (r *Renderer) Sync(state, reason string) string {
	if state == "local_only" {
		line := "sync: local_only"
		if reason != "" {
			line += " (" + reason + ")"
		}
		return r.Styles.Warn.Render(line)
	}
	return r.Styles.OK.Render("sync: " + state)
}
