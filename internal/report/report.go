package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/yokecd/toolcheck/internal/reconcile"
)

type Renderer interface {
	Render(w io.Writer, rows []reconcile.Row) error
}

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

var Formats = []Format{FormatTable, FormatJSON, FormatYAML}

func ParseFormat(value string) (Format, error) {
	for _, format := range Formats {
		if strings.EqualFold(value, string(format)) {
			return format, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q: must be one of %v", value, Formats)
}

func For(format Format, color bool) (Renderer, error) {
	switch format {
	case FormatTable, "":
		return Table{Color: color}, nil
	case FormatJSON:
		return JSON{Color: color}, nil
	case FormatYAML:
		return YAML{Color: color}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

var Headers = table.Row{"#", "Software", "Required Version", "Current Version", "Location"}

// Table renders rows the way the compliance report is shown to humans:
// a rounded table whose software column is green when the versions match and red otherwise,
// followed by a summary line.
type Table struct {
	Color bool
}

func (renderer Table) Render(w io.Writer, rows []reconcile.Row) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleRounded)
	tbl.AppendHeader(Headers)

	for i, row := range rows {
		label := row.Label
		if renderer.Color {
			label = colorOf(row).Sprint(label)
		}
		tbl.AppendRow(table.Row{i, label, row.Required, row.Observed, row.Location})
	}

	_, err := io.WriteString(w, tbl.Render()+"\n"+Summary(rows, renderer.Color)+"\n")
	return err
}

func colorOf(row reconcile.Row) text.Colors {
	if row.Matched {
		return text.Colors{text.FgGreen}
	}
	return text.Colors{text.FgRed}
}

var (
	okStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0"))
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f00"))
)

// Summary counts matched rows: "3/4 requirements satisfied".
func Summary(rows []reconcile.Row, color bool) string {
	var matched int
	for _, row := range rows {
		if row.Matched {
			matched++
		}
	}

	summary := fmt.Sprintf("%d/%d requirements satisfied", matched, len(rows))
	if !color {
		return summary
	}
	if matched == len(rows) {
		return okStyle.Render(summary)
	}
	return failStyle.Render(summary)
}

type JSON struct {
	Color bool
}

func (renderer JSON) Render(w io.Writer, rows []reconcile.Row) error {
	data, err := json.MarshalIndent(document(rows), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return write(w, string(data)+"\n", "json", renderer.Color)
}

type YAML struct {
	Color bool
}

func (renderer YAML) Render(w io.Writer, rows []reconcile.Row) error {
	var builder strings.Builder

	encoder := yaml.NewEncoder(&builder)
	encoder.SetIndent(2)

	if err := encoder.Encode(document(rows)); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	return write(w, builder.String(), "yaml", renderer.Color)
}

// Document is the machine readable form of a report.
type Document struct {
	Satisfied bool            `json:"satisfied" yaml:"satisfied"`
	Rows      []reconcile.Row `json:"rows" yaml:"rows"`
}

func document(rows []reconcile.Row) Document {
	doc := Document{Satisfied: true, Rows: rows}
	if doc.Rows == nil {
		doc.Rows = []reconcile.Row{}
	}
	for _, row := range rows {
		doc.Satisfied = doc.Satisfied && row.Matched
	}
	return doc
}

func write(w io.Writer, content, lexer string, color bool) error {
	if color {
		var builder strings.Builder
		if err := quick.Highlight(&builder, content, lexer, "terminal", "monokai"); err == nil {
			content = builder.String()
		}
	}
	_, err := io.WriteString(w, content)
	return err
}
